package handler

import "time"

// messageResponse is the error envelope rendered at the boundary.
type messageResponse struct {
	Message string `json:"message"`
}

// dataResponse wraps every successful read/write body.
type dataResponse struct {
	Data any `json:"data"`
}

// --- Request types ---

type createReviewRequest struct {
	ReviewedName  string `json:"reviewedName"  validate:"required"`
	IntroText     string `json:"introText"     validate:"required"`
	Category      string `json:"category"      validate:"required"`
	Website       string `json:"website"`
	Telephone     string `json:"telephone"`
	Address       string `json:"address"`
	ReviewDetails string `json:"reviewDetails" validate:"required"`
}

type detachImageRequest struct {
	PublicID string `json:"publicId" validate:"required"`
}

// --- Response types ---
// Owned by the transport layer so the JSON contract is not coupled to
// internal domain changes.

type authorResponse struct {
	ID       string `json:"id"`
	Fullname string `json:"fullname"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

type reviewResponse struct {
	ID            string         `json:"id"`
	ReviewedName  string         `json:"reviewedName"`
	IntroText     string         `json:"introText"`
	Category      string         `json:"category"`
	Likes         int64          `json:"likes"`
	Website       string         `json:"website,omitempty"`
	Telephone     string         `json:"telephone,omitempty"`
	Address       string         `json:"address,omitempty"`
	ReviewDetails string         `json:"reviewDetails"`
	Images        []string       `json:"images"`
	Author        authorResponse `json:"author"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

type countResponse struct {
	Count int64 `json:"count"`
}
