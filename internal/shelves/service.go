// Package shelves composes catalog shelves from the title, watch and like
// stores. A store failure empties only the shelves that needed it; the rest
// of the page still renders.
package shelves

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"streamhub/internal/auth"
	"streamhub/internal/catalog"
	"streamhub/internal/logging"
	"streamhub/internal/metrics"
	"streamhub/pkg/models"
	"streamhub/pkg/utils"
)

const (
	ShelfRecent          = "recent"
	ShelfRecommendations = "recommendations"
	ShelfPopular         = "popular"
	ShelfNewest          = "newest"
	ShelfGenres          = "genres"
	ShelfGrid            = "grid"
)

type TitleSource interface {
	ListAll(ctx context.Context) ([]models.Title, error)
}

type WatchSource interface {
	ListByProfile(ctx context.Context, profileID string, limit int) ([]models.WatchEvent, error)
	ListSince(ctx context.Context, since time.Time) ([]models.WatchEvent, error)
	WatchedIDs(ctx context.Context, profileID string) ([]string, error)
}

type LikeSource interface {
	ListLiked(ctx context.Context, profileID string) ([]string, error)
}

type Config struct {
	PopularWindowDays int
	Limit             int
	NewestLimit       int
	GenreLimit        int
	RecentFetch       int
}

func ConfigFromSettings(s utils.ShelvesConfig) Config {
	return Config{
		PopularWindowDays: s.PopularWindowDays,
		Limit:             s.Limit,
		NewestLimit:       s.NewestLimit,
		GenreLimit:        s.GenreLimit,
		RecentFetch:       s.RecentFetch,
	}
}

func (c Config) withDefaults() Config {
	if c.PopularWindowDays <= 0 {
		c.PopularWindowDays = catalog.PopularWindowDays
	}
	if c.Limit <= 0 {
		c.Limit = catalog.DefaultShelfLimit
	}
	if c.NewestLimit <= 0 {
		c.NewestLimit = catalog.NewestShelfLimit
	}
	if c.GenreLimit <= 0 {
		c.GenreLimit = catalog.GenreShelfLimit
	}
	if c.RecentFetch <= 0 {
		c.RecentFetch = catalog.RecentFetchLimit
	}
	return c
}

type Service struct {
	Titles TitleSource
	Watch  WatchSource
	Likes  LikeSource
	Cfg    Config
	Now    func() time.Time
}

func NewService(titles TitleSource, watch WatchSource, likes LikeSource, cfg Config) *Service {
	return &Service{
		Titles: titles,
		Watch:  watch,
		Likes:  likes,
		Cfg:    cfg.withDefaults(),
		Now:    time.Now,
	}
}

type RecentShelf struct {
	Items    []catalog.RecentItem `json:"items"`
	Degraded bool                 `json:"degraded,omitempty"`
}

type RecommendationShelf struct {
	Titles   []catalog.DisplayEntity `json:"titles"`
	BasedOn  []string                `json:"basedOn"`
	Degraded bool                    `json:"degraded,omitempty"`
}

type PopularShelf struct {
	Items    []catalog.PopularItem `json:"items"`
	Degraded bool                  `json:"degraded,omitempty"`
}

type NewestShelf struct {
	Titles   []catalog.DisplayEntity `json:"titles"`
	Cutoff   time.Time               `json:"cutoff"`
	Degraded bool                    `json:"degraded,omitempty"`
}

// GenreRows carries the rows as a label-keyed map plus their display order.
type GenreRows struct {
	Genres   map[string][]catalog.DisplayEntity `json:"genres"`
	Order    []string                           `json:"order"`
	Cutoff   time.Time                          `json:"cutoff"`
	Degraded bool                               `json:"degraded,omitempty"`
}

type Home struct {
	Recent          RecentShelf         `json:"recent"`
	Recommendations RecommendationShelf `json:"recommendations"`
	Popular         PopularShelf        `json:"popular"`
	Newest          NewestShelf         `json:"newest"`
	Genres          GenreRows           `json:"genres"`
}

type Browse struct {
	FiltersActive bool                    `json:"filtersActive"`
	ShowShelves   bool                    `json:"showShelves"`
	ShowGrid      bool                    `json:"showGrid"`
	Shelves       *Home                   `json:"shelves,omitempty"`
	Grid          []catalog.DisplayEntity `json:"grid"`
	Degraded      bool                    `json:"degraded,omitempty"`
}

// snapshot holds one fetch per source. Each goroutine owns its own fields.
type snapshot struct {
	titles    []models.Title
	titlesErr error

	recent    []models.WatchEvent
	recentErr error

	liked    []string
	likedErr error

	popular    []models.WatchEvent
	popularErr error
}

type sources struct {
	titles, recent, liked, popular bool
}

func (s *Service) fetch(ctx context.Context, profileID string, need sources) *snapshot {
	snap := &snapshot{}
	var g errgroup.Group
	if need.titles {
		g.Go(func() error {
			snap.titles, snap.titlesErr = s.Titles.ListAll(ctx)
			return nil
		})
	}
	if need.recent {
		g.Go(func() error {
			snap.recent, snap.recentErr = s.Watch.ListByProfile(ctx, profileID, s.Cfg.RecentFetch)
			return nil
		})
	}
	if need.liked {
		g.Go(func() error {
			snap.liked, snap.likedErr = s.Likes.ListLiked(ctx, profileID)
			return nil
		})
	}
	if need.popular {
		since := s.Now().AddDate(0, 0, -s.Cfg.PopularWindowDays)
		g.Go(func() error {
			snap.popular, snap.popularErr = s.Watch.ListSince(ctx, since)
			return nil
		})
	}
	_ = g.Wait()
	return snap
}

func (s *Service) record(ctx context.Context, shelf string, err error) bool {
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("shelf", shelf).Msg("shelf degraded")
		metrics.RecordShelf(shelf, true)
		return true
	}
	metrics.RecordShelf(shelf, false)
	return false
}

// logMissing reports events whose title is gone from the catalog.
func logMissing(ctx context.Context, shelf string, events []models.WatchEvent, index catalog.Index) {
	missing := 0
	for _, ev := range events {
		if _, ok := index.Lookup(ev.TitleID); !ok {
			missing++
		}
	}
	if missing > 0 {
		logging.Ctx(ctx).Debug().Str("shelf", shelf).Int("missing", missing).Msg("skipped events for unknown titles")
	}
}

func (s *Service) recentShelf(ctx context.Context, snap *snapshot) RecentShelf {
	if s.record(ctx, ShelfRecent, errors.Join(snap.titlesErr, snap.recentErr)) {
		return RecentShelf{Items: []catalog.RecentItem{}, Degraded: true}
	}
	index := catalog.IndexTitles(snap.titles)
	logMissing(ctx, ShelfRecent, snap.recent, index)
	return RecentShelf{Items: catalog.BuildRecent(snap.recent, index, snap.titles)}
}

func (s *Service) recommendationShelf(ctx context.Context, snap *snapshot) RecommendationShelf {
	if s.record(ctx, ShelfRecommendations, errors.Join(snap.titlesErr, snap.likedErr)) {
		return RecommendationShelf{Titles: []catalog.DisplayEntity{}, BasedOn: []string{}, Degraded: true}
	}
	rec := catalog.BuildRecommendations(snap.liked, snap.titles, s.Cfg.Limit)
	return RecommendationShelf{Titles: rec.Titles, BasedOn: rec.BasedOn}
}

func (s *Service) popularShelf(ctx context.Context, snap *snapshot) PopularShelf {
	if s.record(ctx, ShelfPopular, errors.Join(snap.titlesErr, snap.popularErr)) {
		return PopularShelf{Items: []catalog.PopularItem{}, Degraded: true}
	}
	index := catalog.IndexTitles(snap.titles)
	logMissing(ctx, ShelfPopular, snap.popular, index)
	items := catalog.BuildPopular(snap.popular, index, snap.titles, s.Now(), s.Cfg.PopularWindowDays, s.Cfg.Limit)
	return PopularShelf{Items: items}
}

func (s *Service) newestShelf(ctx context.Context, snap *snapshot, now time.Time, limit int) NewestShelf {
	cutoff := now.Add(-catalog.NewWindow)
	if s.record(ctx, ShelfNewest, snap.titlesErr) {
		return NewestShelf{Titles: []catalog.DisplayEntity{}, Cutoff: cutoff, Degraded: true}
	}
	return NewestShelf{Titles: catalog.BuildNewest(snap.titles, now, limit), Cutoff: cutoff}
}

func (s *Service) genreRows(ctx context.Context, snap *snapshot, now time.Time, perGenre int) GenreRows {
	rows := GenreRows{
		Genres: map[string][]catalog.DisplayEntity{},
		Order:  []string{},
		Cutoff: now.Add(-catalog.NewWindow),
	}
	if s.record(ctx, ShelfGenres, snap.titlesErr) {
		rows.Degraded = true
		return rows
	}
	shelves := catalog.BuildGenreShelves(snap.titles, now, perGenre)
	rows.Genres = catalog.GenreShelfMap(shelves)
	for _, sh := range shelves {
		rows.Order = append(rows.Order, sh.Name)
	}
	return rows
}

func requireProfile(profileID string) error {
	if profileID == "" {
		return auth.ErrNoProfile
	}
	return nil
}

func (s *Service) Recent(ctx context.Context, profileID string) (RecentShelf, error) {
	if err := requireProfile(profileID); err != nil {
		return RecentShelf{}, err
	}
	snap := s.fetch(ctx, profileID, sources{titles: true, recent: true})
	return s.recentShelf(ctx, snap), nil
}

func (s *Service) Recommendations(ctx context.Context, profileID string) (RecommendationShelf, error) {
	if err := requireProfile(profileID); err != nil {
		return RecommendationShelf{}, err
	}
	snap := s.fetch(ctx, profileID, sources{titles: true, liked: true})
	return s.recommendationShelf(ctx, snap), nil
}

func (s *Service) Popular(ctx context.Context) PopularShelf {
	snap := s.fetch(ctx, "", sources{titles: true, popular: true})
	return s.popularShelf(ctx, snap)
}

// Newest caps at limit, or the configured shelf size when limit <= 0.
func (s *Service) Newest(ctx context.Context, limit int) NewestShelf {
	if limit <= 0 {
		limit = s.Cfg.NewestLimit
	}
	snap := s.fetch(ctx, "", sources{titles: true})
	return s.newestShelf(ctx, snap, s.Now(), limit)
}

// GenreRows caps each row at perGenre, or the configured size when
// perGenre <= 0.
func (s *Service) GenreRows(ctx context.Context, perGenre int) GenreRows {
	if perGenre <= 0 {
		perGenre = s.Cfg.GenreLimit
	}
	snap := s.fetch(ctx, "", sources{titles: true})
	return s.genreRows(ctx, snap, s.Now(), perGenre)
}

// Home builds every shelf from a single parallel fetch.
func (s *Service) Home(ctx context.Context, profileID string) (Home, error) {
	if err := requireProfile(profileID); err != nil {
		return Home{}, err
	}
	snap := s.fetch(ctx, profileID, sources{titles: true, recent: true, liked: true, popular: true})
	return s.home(ctx, snap), nil
}

func (s *Service) home(ctx context.Context, snap *snapshot) Home {
	now := s.Now()
	return Home{
		Recent:          s.recentShelf(ctx, snap),
		Recommendations: s.recommendationShelf(ctx, snap),
		Popular:         s.popularShelf(ctx, snap),
		Newest:          s.newestShelf(ctx, snap, now, s.Cfg.NewestLimit),
		Genres:          s.genreRows(ctx, snap, now, s.Cfg.GenreLimit),
	}
}

// Browse renders the shelves while no filter is active and the filtered
// grid otherwise. A watched filter requires a profile.
func (s *Service) Browse(ctx context.Context, profileID string, opts catalog.FilterOptions) (Browse, error) {
	vis := catalog.VisibilityFor(opts)
	out := Browse{
		FiltersActive: opts.Active(),
		ShowShelves:   vis.ShowShelves,
		ShowGrid:      vis.ShowGrid,
		Grid:          []catalog.DisplayEntity{},
	}

	if !vis.ShowGrid {
		home, err := s.Home(ctx, profileID)
		if err != nil {
			return Browse{}, err
		}
		out.Shelves = &home
		return out, nil
	}

	var watched catalog.IDSet
	if opts.Watched == catalog.WatchedYes || opts.Watched == catalog.WatchedNo {
		if err := requireProfile(profileID); err != nil {
			return Browse{}, err
		}
		ids, err := s.Watch.WatchedIDs(ctx, profileID)
		if s.record(ctx, ShelfGrid, err) {
			out.Degraded = true
			return out, nil
		}
		watched = catalog.NewIDSet(ids...)
	}

	snap := s.fetch(ctx, profileID, sources{titles: true})
	if s.record(ctx, ShelfGrid, snap.titlesErr) {
		out.Degraded = true
		return out, nil
	}
	_, out.Grid = catalog.Browse(snap.titles, opts, watched)
	return out, nil
}
