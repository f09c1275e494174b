package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/bookit/internal/auth/domain"
	"github.com/aussiebroadwan/bookit/internal/auth/service"
	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/aussiebroadwan/bookit/pkg/httpx"
)

// AuthHandler serves registration, email verification and login.
type AuthHandler struct {
	AuthService    *service.AuthService
	AccountService *service.AccountService
}

// HandleRegister handles POST /v1/auth/register
//
//	@Summary		Register an account
//	@Description	Creates an unverified account and emails a six digit verification code valid for five minutes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"Account details"
//	@Success		200		{object}	authsdk.MessageResponse	"Verification code sent"
//	@Failure		400		{object}	authsdk.APIError		"Invalid input or email already registered"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/v1/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	r, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}

	_, err := h.AccountService.Register(r.Context(), domain.Registration{
		FullName: req.FullName,
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "OTP sent to email. Please verify."})
}

// HandleVerifyOTP handles POST /v1/auth/verify-otp
//
//	@Summary		Verify email address
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.VerifyOTPRequest	true	"Email and verification code"
//	@Success		200		{object}	authsdk.MessageResponse		"Email verified"
//	@Failure		400		{object}	authsdk.APIError			"Invalid or expired code"
//	@Router			/v1/auth/verify-otp [post].
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.VerifyOTPRequest
	r, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}

	if err := h.AccountService.VerifyEmail(r.Context(), req.Email, req.OTP); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "Email verified. You can now log in."})
}

// HandleResendOTP handles POST /v1/auth/resend-otp
//
//	@Summary		Resend verification code
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResendOTPRequest	true	"Email"
//	@Success		200		{object}	authsdk.MessageResponse		"New code sent"
//	@Failure		400		{object}	authsdk.APIError			"Unknown email"
//	@Router			/v1/auth/resend-otp [post].
func (h *AuthHandler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResendOTPRequest
	r, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}

	if err := h.AccountService.ResendOTP(r.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeNotFound, "User not found").WriteError(w)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{Message: "New OTP sent to email."})
}

// HandleLogin handles POST /v1/auth/login
//
//	@Summary		Log in
//	@Description	Checks credentials and returns a session token. Accounts with MFA enabled first receive
//	@Description	requiresMFA=true and repeat the call with mfaToken or mfaBackupCode. Five consecutive
//	@Description	wrong passwords lock the account for fifteen minutes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials and optional second factor"
//	@Success		200		{object}	authsdk.LoginResponse	"Session token or MFA challenge"
//	@Failure		400		{object}	authsdk.APIError		"Invalid credentials, unverified email or invalid second factor"
//	@Failure		403		{object}	authsdk.APIError		"Account locked or password expired"
//	@Failure		429		{object}	authsdk.APIError		"Rate limit exceeded"
//	@Failure		500		{object}	authsdk.APIError		"Internal server error"
//	@Router			/v1/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	r, ok := decodeBody(w, r, &req)
	if !ok {
		return
	}

	res, err := h.AuthService.Login(r.Context(), domain.LoginRequest{
		Email:      req.Email,
		Password:   req.Password,
		MFACode:    req.MFAToken,
		BackupCode: req.MFABackupCode,
	})
	if err != nil {
		authsdk.ErrServerError.WriteError(w)
		return
	}

	switch res.Outcome {
	case domain.LoginAuthenticated:
		httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
			Message:    res.Message,
			Token:      res.Token,
			Role:       string(res.Role),
			MFAEnabled: res.MFAEnabled,
		})
	case domain.LoginMFARequired:
		httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
			Message:     res.Message,
			RequiresMFA: true,
			UserID:      res.AccountID,
		})
	default:
		loginError(res).WriteError(w)
	}
}

// loginError maps a rejected attempt to its response, keeping the message
// chosen by the state machine.
func loginError(res domain.LoginResult) *authsdk.APIError {
	var base *authsdk.APIError
	switch res.Outcome {
	case domain.LoginLockedOut:
		base = authsdk.ErrLockedOut
	case domain.LoginExpiredPassword:
		base = authsdk.ErrPasswordExpired
	case domain.LoginUnverified:
		base = authsdk.ErrUnverified
	case domain.LoginMFAInvalid:
		base = authsdk.ErrInvalidMFACode
	default:
		base = authsdk.ErrInvalidCredentials
	}
	if res.Message == "" {
		return base
	}
	return base.WithMessage(res.Message)
}
