package room

// Member is a user's membership in a room at some point in history.
type Member struct {
	UserID      string
	DisplayName string
	Membership  string
}

// State is the membership of a room at one point in its history. Apply moves
// it forward over an event and Revert moves it back, so a client holding the
// state at the start of its loaded window can rewind as it pages backward.
type State struct {
	members map[string]Member
}

func NewState() *State {
	return &State{members: make(map[string]Member)}
}

// Member looks up a user.
func (s *State) Member(userID string) (Member, bool) {
	if s == nil {
		return Member{}, false
	}
	m, ok := s.members[userID]
	return m, ok
}

// MemberName is the name shown for m: its display name, or its user id.
func (s *State) MemberName(m Member) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.UserID
}

func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Apply updates the state with ev's content.
func (s *State) Apply(ev Event) {
	if ev.Type != EventTypeMember || ev.Member == nil {
		return
	}
	s.set(ev.Target(), ev.Member)
}

// Revert restores the state as it was before ev.
func (s *State) Revert(ev Event) {
	if ev.Type != EventTypeMember {
		return
	}
	s.set(ev.Target(), ev.PrevMember)
}

func (s *State) set(userID string, content *MemberContent) {
	if content == nil {
		delete(s.members, userID)
		return
	}
	s.members[userID] = Member{
		UserID:      userID,
		DisplayName: content.DisplayName,
		Membership:  content.Membership,
	}
}

// Clone returns an independent copy.
func (s *State) Clone() *State {
	out := NewState()
	if s == nil {
		return out
	}
	for k, v := range s.members {
		out.members[k] = v
	}
	return out
}
