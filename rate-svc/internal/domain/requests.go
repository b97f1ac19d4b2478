package domain

import (
	"github.com/go-playground/validator/v10"
)

var Validate = validator.New()

// RestaurantRequest carries the owner-editable restaurant fields. The
// aggregate fields are never accepted from clients.
type RestaurantRequest struct {
	OwnerID  string `json:"ownerID"`
	Name     string `json:"name" validate:"required"`
	Category string `json:"category"`
	City     string `json:"city"`
	Price    int    `json:"price" validate:"required,min=1,max=3"`
	PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

type UserInfoRequest struct {
	UserID   string `json:"userID" validate:"required,excludesall=/"`
	Name     string `json:"name" validate:"required"`
	PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

type CreateReviewRequest struct {
	Rating   int             `json:"rating" validate:"required,min=1,max=5"`
	Text     string          `json:"text"`
	UserInfo UserInfoRequest `json:"userInfo"`
}

type UpdateReviewRequest struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Text   string `json:"text"`
}

type YumRequest struct {
	UserID   string `json:"userId" validate:"required,excludesall=/"`
	UserName string `json:"userName" validate:"required"`
}
