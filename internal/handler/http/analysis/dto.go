package analysis

import "yt-sentiment/internal/domain/entity"

// CreateRequest is the body of POST /analyses.
type CreateRequest struct {
	Product string `json:"product" example:"Pixel 9"`
	Count   int    `json:"count,omitempty" example:"20"`
}

// ShareDTO is the share of fragments per polarity in percent.
type ShareDTO struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
}

// ResultDTO is an AnalysisResult plus its sentiment share.
type ResultDTO struct {
	*entity.AnalysisResult
	Share ShareDTO `json:"sentiment_share"`
}

func toDTO(r *entity.AnalysisResult) ResultDTO {
	pos, neg := r.SentimentShare()
	return ResultDTO{AnalysisResult: r, Share: ShareDTO{Positive: pos, Negative: neg}}
}
