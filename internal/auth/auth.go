package auth

// Service keeps the allowlist of Telegram users who may talk to this
// bot. A personal assistant normally has exactly one.
type Service struct {
	allowed map[int64]bool
}

func NewService(ids []int64) *Service {
	s := &Service{allowed: make(map[int64]bool, len(ids))}
	for _, id := range ids {
		s.allowed[id] = true
	}
	return s
}

func (s *Service) IsAllowed(userID int64) bool {
	return s.allowed[userID]
}
