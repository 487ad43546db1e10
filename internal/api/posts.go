package api

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/foodshare/foodshare/internal/donation"
	"github.com/foodshare/foodshare/internal/models"
)

// PostsAPI provides the posts.* methods
type PostsAPI struct {
	posts   *donation.PostService
	listing *donation.ListingService
}

// NewPostsAPI creates a new posts API
func NewPostsAPI(posts *donation.PostService, listing *donation.ListingService) *PostsAPI {
	return &PostsAPI{posts: posts, listing: listing}
}

type imageParam struct {
	Data        []byte `json:"data"` // base64 in JSON
	ContentType string `json:"content_type"`
}

type createPostParams struct {
	FoodName        string                 `json:"food_name"`
	FoodType        models.FoodType        `json:"food_type"`
	QuantityValue   models.Quantity        `json:"quantity_value"`
	QuantityType    models.QuantityType    `json:"quantity_type"`
	ExpiryTimer     time.Time              `json:"expiry_timer"`
	FreshnessStatus models.FreshnessStatus `json:"freshness_status"`
	Address         string                 `json:"address"`
	Images          []imageParam           `json:"images"`
}

// Create handles posts.create
func (a *PostsAPI) Create(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p createPostParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	in := donation.CreatePostInput{
		FoodName:        p.FoodName,
		FoodType:        p.FoodType,
		QuantityValue:   p.QuantityValue,
		QuantityType:    p.QuantityType,
		ExpiryTimer:     p.ExpiryTimer,
		FreshnessStatus: p.FreshnessStatus,
		Address:         p.Address,
		Images:          make([]donation.ImageInput, len(p.Images)),
	}
	for i, img := range p.Images {
		in.Images[i] = donation.ImageInput{Data: img.Data, ContentType: img.ContentType}
	}

	post, err := a.posts.CreatePost(ctx.Request.Context(), viewerFrom(ctx), in)
	if err != nil {
		return nil, err
	}
	return gin.H{"success": true, "post": post}, nil
}

type listPostsParams struct {
	ViewerID ID `json:"viewer_id"`
}

// List handles posts.list. The bearer token's viewer wins over viewer_id.
func (a *PostsAPI) List(ctx *gin.Context, params json.RawMessage) (interface{}, error) {
	var p listPostsParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}

	viewerID := string(p.ViewerID)
	if v := viewerFrom(ctx); !v.Anonymous() {
		viewerID = formatID(v.ID)
	}

	posts, err := a.listing.ListPosts(ctx.Request.Context(), viewerID)
	if err != nil {
		return nil, err
	}
	return posts, nil
}
