package titles

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"streamhub/pkg/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// stringList accepts either a JSON string or an array of strings.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = nil
		if s = strings.TrimSpace(s); s != "" {
			*l = stringList{s}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// optionalInt accepts a number, a numeric string, "" or null. The last two
// clear the value.
type optionalInt struct {
	Value *int
}

func (o *optionalInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		o.Value = nil
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not an integer: %q", s)
	}
	o.Value = &n
	return nil
}

func (o optionalInt) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(*o.Value)), nil
}

type titleReq struct {
	Kind         string      `json:"kind" validate:"required,oneof=movie series"`
	Name         string      `json:"name" validate:"required,max=200"`
	Description  string      `json:"description" validate:"max=5000"`
	Year         optionalInt `json:"year"`
	Genres       stringList  `json:"genres" validate:"max=20,dive,max=50"`
	SeriesID     string      `json:"seriesId" validate:"max=100"`
	EpisodeIndex optionalInt `json:"episodeIndex"`
	Actors       stringList  `json:"actors"`
	PosterPath   string      `json:"posterPath"`
	VideoPath    string      `json:"videoPath"`
	PosterFileID string      `json:"posterFileId"`
	VideoFileID  string      `json:"videoFileId"`
}

// requestFromTitle seeds an update. Paths derived from file ids are dropped so
// they follow the ids after the merge.
func requestFromTitle(t models.Title) titleReq {
	poster, video := t.PosterPath, t.VideoPath
	if poster == PlaceholderPoster || (t.PosterFileID != "" && poster == "/img/"+t.PosterFileID) {
		poster = ""
	}
	if t.VideoFileID != "" && video == "/media/"+t.VideoFileID {
		video = ""
	}
	return titleReq{
		Kind:         string(t.Kind),
		Name:         t.Name,
		Description:  t.Description,
		Year:         optionalInt{Value: t.Year},
		Genres:       stringList(t.Genres),
		SeriesID:     t.SeriesID,
		EpisodeIndex: optionalInt{Value: t.EpisodeIndex},
		Actors:       stringList(t.Actors),
		PosterPath:   poster,
		VideoPath:    video,
		PosterFileID: t.PosterFileID,
		VideoFileID:  t.VideoFileID,
	}
}

func (r *titleReq) normalize() {
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.Name = strings.TrimSpace(r.Name)
	r.SeriesID = strings.TrimSpace(r.SeriesID)
	genres := make(stringList, 0, len(r.Genres))
	for _, g := range r.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	r.Genres = genres
}

// validationMessage renders the first failing field as "field: tag".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("%s: %s", verrs[0].Field(), verrs[0].Tag())
	}
	return err.Error()
}

// apply copies the request onto t, filling media paths from file ids.
func (r titleReq) apply(t *models.Title) {
	t.Kind = models.Kind(r.Kind)
	t.Name = r.Name
	t.Description = r.Description
	t.Year = r.Year.Value
	t.Genres = []string(r.Genres)
	if t.Genres == nil {
		t.Genres = []string{}
	}
	t.SeriesID = r.SeriesID
	t.EpisodeIndex = r.EpisodeIndex.Value
	t.Actors = []string(r.Actors)
	t.PosterFileID = r.PosterFileID
	t.VideoFileID = r.VideoFileID
	t.PosterPath = PosterPath(r.PosterPath, r.PosterFileID)
	t.VideoPath = VideoPath(r.VideoPath, r.VideoFileID)
}

const PlaceholderPoster = "/img/placeholder.jpg"

// PosterPath prefers an explicit path, then the uploaded file, then the
// placeholder image.
func PosterPath(path, fileID string) string {
	switch {
	case strings.TrimSpace(path) != "":
		return path
	case strings.TrimSpace(fileID) != "":
		return "/img/" + fileID
	default:
		return PlaceholderPoster
	}
}

// VideoPath prefers an explicit path, then the uploaded file.
func VideoPath(path, fileID string) string {
	if strings.TrimSpace(path) != "" {
		return path
	}
	if strings.TrimSpace(fileID) != "" {
		return "/media/" + fileID
	}
	return ""
}
