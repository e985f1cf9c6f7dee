// Package model contains domain models passed between layers.
package model

import "time"

// Clip is a bounded excerpt of a podcast episode together with its voting state.
// JSON field names are part of the public wire format.
type Clip struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description"`
	StartSeconds     float64   `json:"start_time_seconds"`
	EndSeconds       float64   `json:"end_time_seconds"`
	TranscriptText   *string   `json:"transcript_text"`
	Tags             []string  `json:"tags"`
	BestVotes        int       `json:"best_votes"`
	WorstVotes       int       `json:"worst_votes"`
	VoteScore        int       `json:"vote_score"`
	ControversyScore float64   `json:"controversy_score"`
	IsFeatured       bool      `json:"is_featured"`
	CreatedAt        time.Time `json:"created_at"`
	EpisodeTitle     string    `json:"episode_title"`
	PodcastName      string    `json:"podcast_name"`
}

// TotalVotes is best plus worst votes.
func (c Clip) TotalVotes() int {
	return c.BestVotes + c.WorstVotes
}

// Clone returns a copy that shares no memory with c.
func (c Clip) Clone() Clip {
	out := c
	out.Tags = make([]string, len(c.Tags))
	copy(out.Tags, c.Tags)
	if c.Description != nil {
		d := *c.Description
		out.Description = &d
	}
	if c.TranscriptText != nil {
		t := *c.TranscriptText
		out.TranscriptText = &t
	}
	return out
}

// Validate reports why a clip cannot be stored, or "" when it can.
func (c Clip) Validate() string {
	switch {
	case c.ID == "":
		return "id is required"
	case c.Title == "":
		return "title is required"
	case c.StartSeconds < 0:
		return "start_time_seconds must not be negative"
	case c.StartSeconds >= c.EndSeconds:
		return "start_time_seconds must be before end_time_seconds"
	case c.BestVotes < 0 || c.WorstVotes < 0:
		return "vote counters must not be negative"
	}
	return ""
}

// StringPtr returns a pointer to s; handy for the nullable clip fields.
func StringPtr(s string) *string {
	return &s
}
