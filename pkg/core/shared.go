package core

// SharedContext is the run-scoped state threaded through the step loop:
// credentials and date bounds fixed before the first step, plus the most
// recently extracted bearer token. Only the engine loop writes to it.
type SharedContext struct {
	UserID    string
	Password  string
	StartDate string
	EndDate   string

	token    string
	hasToken bool
}

func NewSharedContext(userID, password, startDate, endDate string) *SharedContext {
	return &SharedContext{
		UserID:    userID,
		Password:  password,
		StartDate: startDate,
		EndDate:   endDate,
	}
}

// Token returns the last extracted token, if any step has produced one.
func (s *SharedContext) Token() (string, bool) {
	return s.token, s.hasToken
}

// SetToken replaces the current token. An empty value is ignored so a token
// once seen never reverts to absent.
func (s *SharedContext) SetToken(token string) {
	if token == "" {
		return
	}
	s.token = token
	s.hasToken = true
}
