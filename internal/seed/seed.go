// Package seed loads the clips a fresh store is populated with.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/okian/podclips/internal/domain/model"
	"github.com/okian/podclips/internal/domain/scoring"
)

//go:embed sample_clips.yaml
var sampleClips []byte

type episode struct {
	ID          string `yaml:"id"`
	Title       string `yaml:"title"`
	PodcastName string `yaml:"podcast_name"`
}

type clip struct {
	ID             string    `yaml:"id"`
	EpisodeID      string    `yaml:"episode_id"`
	Title          string    `yaml:"title"`
	Description    *string   `yaml:"description"`
	StartSeconds   float64   `yaml:"start_time_seconds"`
	EndSeconds     float64   `yaml:"end_time_seconds"`
	TranscriptText *string   `yaml:"transcript_text"`
	Tags           []string  `yaml:"tags"`
	BestVotes      int       `yaml:"best_votes"`
	WorstVotes     int       `yaml:"worst_votes"`
	IsFeatured     bool      `yaml:"is_featured"`
	CreatedAt      time.Time `yaml:"created_at"`
}

type document struct {
	Episodes []episode `yaml:"episodes"`
	Clips    []clip    `yaml:"clips"`
}

// Sample returns the built-in demo clips.
func Sample() ([]model.Clip, error) {
	return Parse(sampleClips)
}

// LoadFile reads clips from a YAML seed file in the same format as the
// built-in sample.
func LoadFile(path string) ([]model.Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document. Episode titles and podcast names are copied
// onto their clips, and derived scores are recomputed from the counters.
func Parse(data []byte) ([]model.Clip, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	episodes := make(map[string]episode, len(doc.Episodes))
	for _, ep := range doc.Episodes {
		episodes[ep.ID] = ep
	}

	clips := make([]model.Clip, 0, len(doc.Clips))
	for _, c := range doc.Clips {
		ep, ok := episodes[c.EpisodeID]
		if !ok {
			return nil, fmt.Errorf("%w: clip %q references %q", ErrUnknownEpisode, c.ID, c.EpisodeID)
		}
		out := model.Clip{
			ID:             c.ID,
			Title:          c.Title,
			Description:    c.Description,
			StartSeconds:   c.StartSeconds,
			EndSeconds:     c.EndSeconds,
			TranscriptText: c.TranscriptText,
			Tags:           c.Tags,
			BestVotes:      c.BestVotes,
			WorstVotes:     c.WorstVotes,
			IsFeatured:     c.IsFeatured,
			CreatedAt:      c.CreatedAt,
			EpisodeTitle:   ep.Title,
			PodcastName:    ep.PodcastName,
		}
		if out.Tags == nil {
			out.Tags = []string{}
		}
		if reason := out.Validate(); reason != "" {
			return nil, fmt.Errorf("%w: clip %q: %s", ErrInvalidSeed, c.ID, reason)
		}
		scoring.Recompute(&out)
		clips = append(clips, out)
	}
	return clips, nil
}
