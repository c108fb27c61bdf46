// api/models/datacenter_models.go
package models

import "github.com/astro-datacenter/rundb/internal/storage"

// PageInfo describes one report page and the keys a request may use on it.
type PageInfo struct {
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Columns  []string `json:"columns"`
	Enums    []string `json:"enums"`
	Statuses []string `json:"statuses"`
}

// DataSetRequest is a data set to check or store. Sequences are given as
// space or comma separated lists.
type DataSetRequest struct {
	On      string `json:"on" binding:"required"`
	Off     string `json:"off"`
	Name    string `json:"name" binding:"max=255"`
	Comment string `json:"comment" binding:"max=1024"`
	Update  int64  `json:"update" binding:"omitempty,min=1"`
}

// CommentRequest adds a comment to a run or a sequence.
type CommentRequest struct {
	Night   string `json:"night" binding:"required"`
	Target  int64  `json:"target" binding:"required,min=1"`
	Comment string `json:"comment" binding:"required"`
}

// UpdateCommentRequest replaces the comment that currently reads OldComment.
type UpdateCommentRequest struct {
	Night      string `json:"night" binding:"required"`
	Target     int64  `json:"target" binding:"required,min=1"`
	Comment    string `json:"comment" binding:"required"`
	OldComment string `json:"old_comment" binding:"required"`
}

// ResetRequest resets the processing state of sequences. An empty step
// resets failed and crashed sequences.
type ResetRequest struct {
	Step      string `json:"step" form:"step" binding:"omitempty,oneof=callisto star"`
	Sequences string `json:"sequences" form:"sequences" binding:"required"`
}

// ResetPreviewResponse lists the state of each sequence a reset would look at.
type ResetPreviewResponse struct {
	Step      string               `json:"step"`
	Sequences []storage.ResetState `json:"sequences"`
}

// ResetResponse reports how many status rows a reset changed.
type ResetResponse struct {
	Message string `json:"message"`
	Rows    int64  `json:"rows"`
}
