package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/foodshare/foodshare/internal/auth"
)

// AccountsAPI provides the accounts.* methods
type AccountsAPI struct {
	auth *auth.Service
}

// NewAccountsAPI creates a new accounts API
func NewAccountsAPI(svc *auth.Service) *AccountsAPI {
	return &AccountsAPI{auth: svc}
}

type registerParams struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	AccountType string `json:"account_type"`
}

// Register handles accounts.register
func (a *AccountsAPI) Register(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p registerParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	id, err := a.auth.Register(ctx.Request.Context(), p.Email, p.Password, p.AccountType)
	if err != nil {
		return nil, err
	}
	return gin.H{"success": true, "user": id}, nil
}

type loginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles accounts.login
func (a *AccountsAPI) Login(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p loginParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	token, id, err := a.auth.Login(ctx.Request.Context(), p.Email, p.Password)
	if err != nil {
		return nil, err
	}
	return gin.H{"success": true, "token": token, "user": id}, nil
}
