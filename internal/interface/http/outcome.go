package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edu-verify/internal/application"
	"github.com/oksasatya/edu-verify/internal/domain/entity"
	"github.com/oksasatya/edu-verify/pkg/response"
)

type outcomeView struct {
	Outcome        application.OutcomeKind `json:"outcome"`
	PlatformID     string                  `json:"platform_id,omitempty"`
	Email          string                  `json:"email,omitempty"`
	SubmittedEmail string                  `json:"submitted_email,omitempty"`
	EmailMismatch  bool                    `json:"email_mismatch,omitempty"`
	ExpiresAt      *time.Time              `json:"expires_at,omitempty"`
	VerifiedAt     *time.Time              `json:"verified_at,omitempty"`
	RegisteredAt   *time.Time              `json:"registered_at,omitempty"`
	Projects       *entity.ProjectStats    `json:"projects,omitempty"`
	Ticket         string                  `json:"ticket,omitempty"`
}

var outcomeStatus = map[application.OutcomeKind]int{
	application.OutcomeCodeSent:           http.StatusAccepted,
	application.OutcomeVerified:           http.StatusOK,
	application.OutcomeAlreadyVerified:    http.StatusOK,
	application.OutcomeFormOpened:         http.StatusOK,
	application.OutcomeInvalidFormat:      http.StatusBadRequest,
	application.OutcomeWrongDomain:        http.StatusBadRequest,
	application.OutcomeInvalidCode:        http.StatusBadRequest,
	application.OutcomeExpired:            http.StatusGone,
	application.OutcomeEmailTaken:         http.StatusConflict,
	application.OutcomeNotAuthorized:      http.StatusForbidden,
	application.OutcomeNotificationFailed: http.StatusBadGateway,
	application.OutcomeInternalError:      http.StatusInternalServerError,
}

var outcomeMessage = map[application.OutcomeKind]string{
	application.OutcomeCodeSent:           "verification code sent; check your inbox",
	application.OutcomeVerified:           "email verified",
	application.OutcomeAlreadyVerified:    "already verified",
	application.OutcomeFormOpened:         "verification form opened",
	application.OutcomeInvalidFormat:      "invalid email address",
	application.OutcomeWrongDomain:        "email must belong to an accepted academic domain",
	application.OutcomeInvalidCode:        "invalid verification code",
	application.OutcomeExpired:            "verification code expired; register again for a new one",
	application.OutcomeEmailTaken:         "email already verified by another member",
	application.OutcomeNotAuthorized:      "this verification is not for your account",
	application.OutcomeNotificationFailed: "could not send the verification email; try again later",
	application.OutcomeInternalError:      "something went wrong",
}

// StatusFor maps an outcome to its HTTP status.
func StatusFor(k application.OutcomeKind) int {
	if s, ok := outcomeStatus[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func viewOf(o application.Outcome) outcomeView {
	v := outcomeView{
		Outcome:    o.Kind,
		PlatformID: o.PlatformID,
		Ticket:     o.Ticket,
		ExpiresAt:  timePtr(o.ExpiresAt),
		VerifiedAt: timePtr(o.VerifiedAt),
	}
	switch o.Kind {
	case application.OutcomeInternalError:
		// nothing beyond the kind leaks out
		v.PlatformID = ""
	case application.OutcomeAlreadyVerified:
		v.Email = o.Email
		v.SubmittedEmail = o.SubmittedEmail
		v.EmailMismatch = o.EmailMismatch
		v.RegisteredAt = timePtr(o.RegisteredAt)
		p := o.Projects
		v.Projects = &p
	default:
		v.Email = o.Email
	}
	return v
}

// renderOutcome writes o inside the standard envelope.
func renderOutcome(c *gin.Context, o application.Outcome) {
	status := StatusFor(o.Kind)
	msg := outcomeMessage[o.Kind]
	v := viewOf(o)
	if o.Success() {
		response.Success(c, status, v, msg, nil)
		return
	}
	response.ErrorWithData(c, status, msg, v, gin.H{"code": o.Kind})
}
