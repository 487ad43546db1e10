package api

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodshare/foodshare/internal/donation"
	"github.com/foodshare/foodshare/internal/models"
)

// ClaimsAPI provides the claims.* methods
type ClaimsAPI struct {
	claims *donation.ClaimService
}

// NewClaimsAPI creates a new claims API
func NewClaimsAPI(claims *donation.ClaimService) *ClaimsAPI {
	return &ClaimsAPI{claims: claims}
}

type submitClaimParams struct {
	PostID   ID               `json:"post_id"`
	Quantity *models.Quantity `json:"quantity"`
}

// Submit handles claims.submit for the signed-in viewer
func (a *ClaimsAPI) Submit(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	viewer := viewerFrom(ctx)
	if viewer.Anonymous() {
		return nil, donation.Unauthenticated()
	}

	var p submitClaimParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if p.PostID == "" || p.Quantity == nil {
		return nil, invalidParams("missing required parameters: post_id, quantity")
	}

	claim, err := a.claims.SubmitClaim(ctx.Request.Context(), string(p.PostID), formatID(viewer.ID), *p.Quantity)
	if err != nil {
		return nil, err
	}
	return gin.H{"success": true, "claim": claim}, nil
}

// ListMine handles claims.list_mine
func (a *ClaimsAPI) ListMine(ctx *gin.Context, _ json.RawMessage) (interface{}, error) {
	viewer := viewerFrom(ctx)
	if viewer.Anonymous() {
		return nil, donation.Unauthenticated()
	}

	claims, err := a.claims.ListUserClaims(ctx.Request.Context(), formatID(viewer.ID))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
