package journal

import (
	"context"

	"trenerka/internal/core"
)

// Ports for the session store.
type (
	DraftEditor interface {
		// UpdateDraftField sets one field of the live draft.
		UpdateDraftField(ctx context.Context, field core.Field, value string) error
		// Draft returns a copy of the live draft.
		Draft(ctx context.Context) (core.Draft, error)
	}

	// SessionAppender commits the live draft as a new session.
	SessionAppender interface {
		AddSession(ctx context.Context) (core.Session, error)
	}

	// SessionLister returns every committed session in insertion order.
	SessionLister interface {
		Sessions(ctx context.Context) ([]core.Session, error)
	}

	Store interface {
		DraftEditor
		SessionAppender
		SessionLister
	}
)
