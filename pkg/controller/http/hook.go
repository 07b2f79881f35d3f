package http

import (
	"crypto/subtle"
	"io"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	azdocontroller "github.com/m-mizutani/herald/pkg/controller/azdo"
	"github.com/m-mizutani/herald/pkg/domain/interfaces"
)

const hookSecretHeader = "X-Herald-Secret"

// HookHandler handles Azure DevOps build service hooks
type HookHandler struct {
	secret string
	hookUC interfaces.HookUseCase
}

// NewHookHandler creates a new HookHandler
func NewHookHandler(secret string, hookUC interfaces.HookUseCase) *HookHandler {
	return &HookHandler{
		secret: secret,
		hookUC: hookUC,
	}
}

// Handle processes service hook requests
func (h *HookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	if !h.verifySecret(r.Header.Get(hookSecretHeader)) {
		logger.Warn("Invalid hook secret")
		writeError(ctx, w, goerr.New("invalid secret"), http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	event, err := azdocontroller.ParseBuildEvent(body)
	if err != nil {
		logger.Warn("Failed to parse hook payload", "error", err)
		writeError(ctx, w, err, http.StatusBadRequest)
		return
	}

	if err := h.hookUC.HandleBuildEvent(ctx, event); err != nil {
		logger.Error("Failed to handle build event", "error", err)
		writeError(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

// verifySecret compares the header value with the configured secret in constant time
func (h *HookHandler) verifySecret(got string) bool {
	if h.secret == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) == 1
}
