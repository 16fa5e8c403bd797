// Package store persists finished sessions: per-user CSV transcripts
// and metrics, post-call summaries, and a SQLite archive.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// TranscriptRow - одна реплика разговора в том виде, в каком она
// попадает в файл расшифровки.
type TranscriptRow struct {
	Timestamp string
	Speaker   string
	Text      string
	Sentiment string
	Intent    string
}

// MetricsRow is one metrics snapshot appended at call teardown.
type MetricsRow struct {
	EngagementScore     int
	SentimentPositivity float64
	ConversionPotential float64
}

var transcriptHeader = []string{"timestamp", "speaker", "text", "sentiment", "intent"}
var metricsHeader = []string{"engagement_score", "sentiment_positivity", "conversion_potential"}

// FileStore writes per-user artifacts under a base directory.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) transcriptPath(username string) string {
	return filepath.Join(s.dir, username+"_transcript.csv")
}

func (s *FileStore) metricsPath(username string) string {
	return filepath.Join(s.dir, username+"_metrics.csv")
}

func (s *FileStore) summaryPath(username string) string {
	return filepath.Join(s.dir, username+"_post_call_summary.txt")
}

// AppendTranscript appends rows to the user's transcript file,
// creating it with a header on first write. Rows from successive
// sessions accumulate in the same file.
func (s *FileStore) AppendTranscript(username string, rows []TranscriptRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := s.transcriptPath(username)
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open transcript %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(transcriptHeader); err != nil {
			return fmt.Errorf("write transcript header: %w", err)
		}
	}
	for _, row := range rows {
		record := []string{row.Timestamp, row.Speaker, row.Text, row.Sentiment, row.Intent}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write transcript row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush transcript: %w", err)
	}
	return nil
}

// ReadTranscript loads every row previously written for the user.
func (s *FileStore) ReadTranscript(username string) ([]TranscriptRow, error) {
	f, err := os.Open(s.transcriptPath(username))
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	rows := make([]TranscriptRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 5 {
			continue
		}
		rows = append(rows, TranscriptRow{
			Timestamp: record[0],
			Speaker:   record[1],
			Text:      record[2],
			Sentiment: record[3],
			Intent:    record[4],
		})
	}
	return rows, nil
}

// AppendMetrics appends one metrics snapshot for the user.
func (s *FileStore) AppendMetrics(username string, row MetricsRow) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := s.metricsPath(username)
	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open metrics %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(metricsHeader); err != nil {
			return fmt.Errorf("write metrics header: %w", err)
		}
	}
	record := []string{
		strconv.Itoa(row.EngagementScore),
		strconv.FormatFloat(row.SentimentPositivity, 'f', 2, 64),
		strconv.FormatFloat(row.ConversionPotential, 'f', 2, 64),
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("write metrics row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush metrics: %w", err)
	}
	return nil
}

// ReadMetrics loads all metrics snapshots for the user.
func (s *FileStore) ReadMetrics(username string) ([]MetricsRow, error) {
	f, err := os.Open(s.metricsPath(username))
	if err != nil {
		return nil, fmt.Errorf("open metrics: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read metrics: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	rows := make([]MetricsRow, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 3 {
			continue
		}
		engagement, _ := strconv.Atoi(record[0])
		positivity, _ := strconv.ParseFloat(record[1], 64)
		conversion, _ := strconv.ParseFloat(record[2], 64)
		rows = append(rows, MetricsRow{
			EngagementScore:     engagement,
			SentimentPositivity: positivity,
			ConversionPotential: conversion,
		})
	}
	return rows, nil
}

// WriteSummary overwrites the user's post-call summary with the
// latest text.
func (s *FileStore) WriteSummary(username, summary string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(s.summaryPath(username), []byte(summary), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// ReadSummary returns the latest summary for the user.
func (s *FileStore) ReadSummary(username string) (string, error) {
	raw, err := os.ReadFile(s.summaryPath(username))
	if err != nil {
		return "", fmt.Errorf("read summary: %w", err)
	}
	return string(raw), nil
}

// Usernames lists users that have at least one transcript on disk.
func (s *FileStore) Usernames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read output dir: %w", err)
	}
	var names []string
	for _, entry := range entries {
		name := entry.Name()
		const suffix = "_transcript.csv"
		if len(name) > len(suffix) && name[len(name)-len(suffix):] == suffix {
			names = append(names, name[:len(name)-len(suffix)])
		}
	}
	return names, nil
}
