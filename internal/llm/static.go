package llm

import "context"

// StaticClient returns a fixed reply. Used for offline demos and as
// a stand-in when no provider key is configured.
type StaticClient struct {
	Reply string
}

func (c StaticClient) Complete(context.Context, Request) (string, error) {
	if c.Reply == "" {
		return "positive. General Inquiry. Offline mode reply.", nil
	}
	return c.Reply, nil
}
