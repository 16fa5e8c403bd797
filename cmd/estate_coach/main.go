/*
Package main is the entry point for the estate_coach CLI.

estate_coach assists real-estate sales agents during live calls: it
tags customer utterances with sentiment and intent, generates replies,
tracks call metrics and archives every session for review.

Usage:

	estate_coach [command]

Available Commands:

	converse    Run a live coaching session over stdin
	coach       Chat with the sales coach persona
	ask         Answer a question from the knowledge base
	ingest      Index documents into the knowledge base
	transcribe  Transcribe a recorded audio clip
	say         Synthesize speech for a reply
	crm         Show CRM records, optionally filtered by city
	home        Show the dashboard home page
	perf        Show the sales performance leaderboard
	report      Show session analytics for an agent
	transcript  Show the stored transcript for an agent
*/
package main

import (
	"fmt"
	"os"

	"github.com/tetraminz/estate_coach/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
