package announce

//go:generate mockgen -destination=mock/mock_announcer.go -package=mockannounce -source=announcer.go

import "context"

// Announcer delivers combat messages to wherever the players read them.
// Messages are sent in order as one batch.
type Announcer interface {
	Announce(ctx context.Context, messages ...string) error
}

// Func adapts a function to the Announcer interface.
type Func func(ctx context.Context, messages ...string) error

func (f Func) Announce(ctx context.Context, messages ...string) error {
	return f(ctx, messages...)
}

// nonEmpty drops blank entries.
func nonEmpty(messages []string) []string {
	out := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg != "" {
			out = append(out, msg)
		}
	}
	return out
}
