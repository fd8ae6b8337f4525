package dashboard

// Service answers dashboard queries against one table file.
type Service struct {
	Path  string
	Cache *Cache
}

func NewService(path string, cache *Cache) *Service {
	if cache == nil {
		cache = NewCache()
	}
	return &Service{Path: path, Cache: cache}
}

func (s *Service) ByState() ([]StateStat, error) {
	t, err := s.Cache.Table(s.Path)
	if err != nil {
		return nil, err
	}
	return ByState(t)
}

func (s *Service) Timeline() ([]TimelinePoint, error) {
	t, err := s.Cache.Table(s.Path)
	if err != nil {
		return nil, err
	}
	return Timeline(t)
}

func (s *Service) Lookup(state, industry string) (LookupResult, error) {
	t, err := s.Cache.Table(s.Path)
	if err != nil {
		return LookupResult{}, err
	}
	return Lookup(t, state, industry)
}

func (s *Service) Options() (Options, error) {
	t, err := s.Cache.Table(s.Path)
	if err != nil {
		return Options{}, err
	}
	return LookupOptions(t)
}

func (s *Service) Summary() (Summary, error) {
	t, err := s.Cache.Table(s.Path)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(t), nil
}

// Notices returns the rows matching the non-empty filters.
func (s *Service) Notices(state, industry string) (Notices, error) {
	t, err := s.Cache.Table(s.Path)
	if err != nil {
		return Notices{}, err
	}
	return FilterNotices(t, state, industry), nil
}

// Invalidate forces the next query to reread the table.
func (s *Service) Invalidate() { s.Cache.Invalidate(s.Path) }
