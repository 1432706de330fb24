package models

type ChatKind string

const (
	ChatIndividual ChatKind = "individual"
	ChatGroup      ChatKind = "group"
)

// Conversation is the resolved kind of an inbound chat: a group-like chat
// carries its title, an individual chat carries nothing beyond the ID.
type Conversation struct {
	Kind  ChatKind
	ID    int64
	Title string
}

// Sender is the reporting user, when Telegram resolves one.
type Sender struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

func (s *Sender) FullName() string {
	name := s.FirstName
	if s.LastName != "" {
		name += " " + s.LastName
	}
	return name
}
