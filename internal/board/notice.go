package board

import (
	"errors"

	"todo/internal/service"
)

// NoticeKind classifies a Notice.
type NoticeKind int

const (
	// NoticeNone means there is nothing to show.
	NoticeNone NoticeKind = iota
	NoticeSuccess
	NoticeError
	// NoticeSessionExpired means the credential was rejected and the user
	// has to log in again.
	NoticeSessionExpired
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "success"
	case NoticeError:
		return "error"
	case NoticeSessionExpired:
		return "session expired"
	default:
		return "none"
	}
}

// Notice is a transient user-facing message.
type Notice struct {
	Kind NoticeKind
	Text string
	Err  error
}

// Event is what Resolve reports back to the surface.
type Event struct {
	Notice Notice

	// Next is a follow-up request the surface must run, or nil.
	Next Request

	// Unauthorized is set when the session credential was rejected.
	// Local state has been cleared and the surface should ask for a login.
	Unauthorized bool
}

// Append combines n with a later error notice. The texts are kept on
// separate lines and the errors are joined.
func (n Notice) Append(later Notice) Notice {
	if n.Kind == NoticeNone || n.Kind == NoticeSuccess {
		return later
	}
	return Notice{
		Kind: n.Kind,
		Text: n.Text + "\n" + later.Text,
		Err:  errors.Join(n.Err, later.Err),
	}
}

const sessionExpiredText = "Session expired. Please log in again."

func success(text string) Notice {
	return Notice{Kind: NoticeSuccess, Text: text}
}

// failure builds an error notice. Validation errors from the backend are
// shown as the server worded them; anything else gets the fallback text.
func failure(err error, fallback string) Notice {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		return Notice{Kind: NoticeError, Text: apiErr.Detail(), Err: err}
	}
	var refused *RefusedError
	if errors.As(err, &refused) {
		return Notice{Kind: NoticeError, Text: refused.Error(), Err: err}
	}
	return Notice{Kind: NoticeError, Text: fallback, Err: err}
}

// ErrNoServerID is reported when the server accepted a create but its
// response carried no identifier.
var ErrNoServerID = errors.New("server response carried no id")

// RefusedError is returned for operations rejected before any request is
// sent, such as deleting a task the server has not confirmed yet.
type RefusedError struct {
	Reason string
}

func (e *RefusedError) Error() string { return e.Reason }
