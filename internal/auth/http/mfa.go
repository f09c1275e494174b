package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/service"
	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/aussiebroadwan/bookit/pkg/httpx"
)

// MFAHandler handles all MFA-related endpoints.
type MFAHandler struct {
	MFAService *service.MFAService
}

// HandleSetup handles POST /v1/mfa/setup
//
//	@Summary		Start TOTP enrolment
//	@Description	Generates a TOTP secret for the authenticated account and returns it as a QR code and a manual entry key.
//	@Description	MFA stays disabled until the setup is verified.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MFASetupResponse	"QR code and manual entry key"
//	@Failure		400	{object}	authsdk.APIError			"MFA already enabled"
//	@Failure		401	{object}	authsdk.APIError			"Invalid or missing access token"
//	@Failure		500	{object}	authsdk.APIError			"Internal server error"
//	@Router			/v1/mfa/setup [post].
func (h *MFAHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	setup, err := h.MFAService.Initialize(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFASetupResponse{
		Message:        "MFA setup initialized",
		QRCode:         setup.QRCode,
		ManualEntryKey: setup.ManualEntryKey,
	})
}

// HandleVerifySetup handles POST /v1/mfa/setup/verify
//
//	@Summary		Finish TOTP enrolment
//	@Description	Verifies a code from the authenticator, enables MFA and returns ten single-use backup codes. The codes are shown only once.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.MFACodeRequest			true	"TOTP code"
//	@Success		200		{object}	authsdk.MFASetupVerifyResponse	"Backup codes"
//	@Failure		400		{object}	authsdk.APIError				"Setup not started or invalid code"
//	@Failure		401		{object}	authsdk.APIError				"Invalid or missing access token"
//	@Router			/v1/mfa/setup/verify [post].
func (h *MFAHandler) HandleVerifySetup(w http.ResponseWriter, r *http.Request) {
	var req authsdk.MFACodeRequest
	r, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		authsdk.ErrInvalidRequest.WithMessage("MFA token is required").WriteError(w)
		return
	}

	codes, err := h.MFAService.VerifySetup(r.Context(), httpx.UserIDFromContext(r.Context()), req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFASetupVerifyResponse{
		Message:     "MFA setup completed successfully",
		BackupCodes: codes,
		MFAEnabled:  true,
	})
}

// HandleVerify handles POST /v1/auth/mfa/verify/{userId}
//
//	@Summary		Verify a second factor
//	@Description	Checks a TOTP code or a backup code for the account. A backup code is consumed on success.
//	@Tags			MFA
//	@Accept			json
//	@Produce		json
//	@Param			userId	path		string						true	"Account id"
//	@Param			request	body		authsdk.MFAVerifyRequest	true	"TOTP code or backup code"
//	@Success		200		{object}	authsdk.MFAVerifyResponse	"Verified"
//	@Failure		400		{object}	authsdk.APIError			"MFA not enabled or invalid code"
//	@Failure		429		{object}	authsdk.APIError			"Rate limit exceeded"
//	@Router			/v1/auth/mfa/verify/{userId} [post].
func (h *MFAHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req authsdk.MFAVerifyRequest
	r, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}
	if req.Token == "" && req.BackupCode == "" {
		authsdk.ErrInvalidRequest.WithMessage("MFA token or backup code is required").WriteError(w)
		return
	}

	v, err := h.MFAService.Verify(r.Context(), r.PathValue("userId"), req.Token, req.BackupCode)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFAVerifyResponse{
		Message:              "MFA verification successful",
		Verified:             true,
		UsedBackupCode:       v.Method == domain.MFAMethodBackupCode,
		RemainingBackupCodes: v.RemainingBackupCodes,
	})
}

// HandleDisable handles POST /v1/mfa/disable
//
//	@Summary		Disable MFA
//	@Description	Removes the TOTP secret and every backup code after re-confirming the password.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.PasswordRequest	true	"Account password"
//	@Success		200		{object}	authsdk.MessageResponse	"MFA disabled"
//	@Failure		400		{object}	authsdk.APIError		"Missing or wrong password"
//	@Failure		401		{object}	authsdk.APIError		"Invalid or missing access token"
//	@Router			/v1/mfa/disable [post].
func (h *MFAHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PasswordRequest
	r, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}
	if req.Password == "" {
		authsdk.ErrInvalidRequest.WithMessage("Password is required to disable MFA").WriteError(w)
		return
	}

	if err := h.MFAService.Disable(r.Context(), httpx.UserIDFromContext(r.Context()), req.Password); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "MFA has been disabled successfully"})
}

// HandleRegenerateBackupCodes handles POST /v1/mfa/backup-codes
//
//	@Summary		Regenerate backup codes
//	@Description	Replaces every backup code after re-confirming the password. The new codes are shown only once.
//	@Tags			MFA
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.PasswordRequest		true	"Account password"
//	@Success		200		{object}	authsdk.BackupCodesResponse	"New backup codes"
//	@Failure		400		{object}	authsdk.APIError			"MFA not enabled or wrong password"
//	@Failure		401		{object}	authsdk.APIError			"Invalid or missing access token"
//	@Router			/v1/mfa/backup-codes [post].
func (h *MFAHandler) HandleRegenerateBackupCodes(w http.ResponseWriter, r *http.Request) {
	var req authsdk.PasswordRequest
	r, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}
	if req.Password == "" {
		authsdk.ErrInvalidRequest.WithMessage("Password is required to regenerate backup codes").WriteError(w)
		return
	}

	codes, err := h.MFAService.RegenerateBackupCodes(r.Context(), httpx.UserIDFromContext(r.Context()), req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.BackupCodesResponse{
		Message:     "Backup codes regenerated successfully",
		BackupCodes: codes,
	})
}

// HandleStatus handles GET /v1/mfa/status
//
//	@Summary		MFA status
//	@Tags			MFA
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.MFAStatusResponse	"MFA flags and remaining backup codes"
//	@Failure		401	{object}	authsdk.APIError			"Invalid or missing access token"
//	@Failure		404	{object}	authsdk.APIError			"Account not found"
//	@Router			/v1/mfa/status [get].
func (h *MFAHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.MFAService.Status(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MFAStatusResponse{
		MFAEnabled:           st.MFAEnabled,
		MFASetupCompleted:    st.MFASetupCompleted,
		RemainingBackupCodes: st.RemainingBackupCodes,
	})
}
