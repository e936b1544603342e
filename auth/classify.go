package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/nexocrm/nexo-go/internal/util"
)

// FailureClass distinguishes a dead session from a mere permission denial.
// Treating every 403 as a session failure produces forced-logout loops on
// ordinary permission denials, so the split is load-bearing.
type FailureClass int

const (
	// SoftPermissionFailure: the session is valid, the operation is not
	// authorized. Ambiguous responses default here — failing open avoids
	// destructive logout loops; the denial stays visible through a toast.
	SoftPermissionFailure FailureClass = iota
	// HardSessionFailure: the session itself is invalid and must be torn
	// down.
	HardSessionFailure
)

func (c FailureClass) String() string {
	if c == HardSessionFailure {
		return "hard"
	}
	return "soft"
}

// actionLogout is the structured hint a server attaches to a 403 when the
// client must log out regardless of the reason wording.
const actionLogout = "logout"

// sessionInvalidPhrases are matched against the folded (lowercased,
// diacritic-stripped) reason text. The server speaks Spanish; the English
// variants are kept because the folded Spanish forms contain them anyway and
// some integrations answer in English.
var sessionInvalidPhrases = []string{
	"token invalido",
	"token faltante",
	"sesion expirada",
	"cuenta inactiva",
	"token invalid",
	"token missing",
	"session expired",
	"account inactive",
}

// failureBody is the structured error payload the backend returns on 401/403.
type failureBody struct {
	Message string `json:"message"`
	Action  string `json:"action"`
}

// Classify derives the failure class from a 401/403 response. The returned
// reason is the server-supplied message when one exists, suitable for
// showing to the user.
func Classify(status int, body []byte) (FailureClass, string) {
	var parsed failureBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		parsed.Message = strings.TrimSpace(string(body))
	}
	reason := parsed.Message

	if status == http.StatusUnauthorized {
		if reason == "" {
			reason = "Sesión expirada"
		}
		return HardSessionFailure, reason
	}

	if status == http.StatusForbidden {
		if parsed.Action == actionLogout {
			return HardSessionFailure, reason
		}
		folded := util.FoldText(reason)
		for _, phrase := range sessionInvalidPhrases {
			if strings.Contains(folded, phrase) {
				return HardSessionFailure, reason
			}
		}
	}
	if reason == "" {
		reason = "No autorizado"
	}
	return SoftPermissionFailure, reason
}
