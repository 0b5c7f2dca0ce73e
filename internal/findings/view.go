package findings

import (
	"context"

	"github.com/ppiankov/pipeguard/internal/models"
)

// State is the renderer phase. Exactly one applies at a time.
type State int

const (
	StateLoading State = iota
	StateError
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// View is what the renderer draws: a state plus its payload.
type View struct {
	State    State
	Err      error
	Document *models.FindingsDocument
}

// Loading returns the initial view.
func Loading() View {
	return View{State: StateLoading}
}

// Failed returns the error view.
func Failed(err error) View {
	return View{State: StateError, Err: err}
}

// Loaded returns the view for a fetched document.
func Loaded(doc *models.FindingsDocument) View {
	return View{State: StateLoaded, Document: doc}
}

// Resolve loads from src and returns the terminal view.
func Resolve(ctx context.Context, src *Source) View {
	doc, err := src.Load(ctx)
	if err != nil {
		return Failed(err)
	}
	return Loaded(doc)
}
