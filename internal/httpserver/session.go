package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-orders/internal/domain"
)

type loginRequest struct {
	User  loginUser `json:"user"`
	Token string    `json:"token"`
}

type loginUser struct {
	ID    flexID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// flexID accepts the user id as a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(domain.NormalizeID(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(domain.NormalizeID(n.String()))
	return nil
}

// sessionResponse never carries the token.
type sessionResponse struct {
	UserID          string `json:"userId,omitempty"`
	IsAuthenticated bool   `json:"isAuthenticated"`
}

func toSessionResponse(s domain.Session) sessionResponse {
	return sessionResponse{UserID: s.UserID, IsAuthenticated: s.IsAuthenticated}
}

func (h *handlers) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, toSessionResponse(h.deps.Session.Current()))
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login payload"})
		return
	}
	if req.User.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user.id required"})
		return
	}
	user := domain.User{ID: string(req.User.ID), Name: req.User.Name, Email: req.User.Email}
	if err := h.deps.Session.Login(c.Request.Context(), user, req.Token); err != nil {
		if errors.Is(err, domain.ErrEmptyToken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Printf("session: login error=%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(h.deps.Session.Current()))
}

func (h *handlers) logout(c *gin.Context) {
	h.deps.Session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, toSessionResponse(h.deps.Session.Current()))
}
