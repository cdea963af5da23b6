package publish

import (
	"regexp"
	"time"

	"google.golang.org/api/youtube/v3"
)

const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

var hashtagPattern = regexp.MustCompile(`#(\w+)`)

// Schedule asks for a delayed release. PublishAt must be in the future
// when Enabled.
type Schedule struct {
	Enabled   bool
	PublishAt time.Time
}

// Metadata is everything sent to the platform about a video.
type Metadata struct {
	Title         string
	Description   string
	Tags          []string
	PrivacyStatus string
	PublishAt     *time.Time
	MadeForKids   bool
	CategoryID    string
}

// ExtractTags returns every hashtag in description, in order and without
// the leading '#'. Duplicates are kept.
func ExtractTags(description string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(description, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}

// BuildMetadata derives the platform metadata. A scheduled release is
// always private with a UTC publish time; anything else is public.
func BuildMetadata(title, description string, schedule Schedule) Metadata {
	meta := Metadata{
		Title:         title,
		Description:   description,
		Tags:          ExtractTags(description),
		PrivacyStatus: PrivacyPublic,
	}

	if schedule.Enabled {
		at := schedule.PublishAt.UTC()
		meta.PrivacyStatus = PrivacyPrivate
		meta.PublishAt = &at
	}

	return meta
}

// Video shapes the metadata as the YouTube Data API resource.
func (m Metadata) Video() *youtube.Video {
	status := &youtube.VideoStatus{
		PrivacyStatus:           m.PrivacyStatus,
		SelfDeclaredMadeForKids: m.MadeForKids,
		ForceSendFields:         []string{"SelfDeclaredMadeForKids"},
	}
	if m.PublishAt != nil {
		status.PublishAt = m.PublishAt.UTC().Format(time.RFC3339)
	}

	return &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       m.Title,
			Description: m.Description,
			Tags:        m.Tags,
			CategoryId:  m.CategoryID,
		},
		Status: status,
	}
}
