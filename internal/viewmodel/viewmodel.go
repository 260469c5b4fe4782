package viewmodel

// HomePage holds data for the landing page.
type HomePage struct {
	Title   string
	History []MatchRow
}

// MatchRow is one finished match in the history table.
type MatchRow struct {
	GameID     string
	Outcome    string
	Rounds     int
	Coins      int
	FinishedAt string
}

// GamePage holds data for the board page template.
type GamePage struct {
	Title     string
	GameID    string
	InviteURL string
	Board     Board
}

// Board holds data for the board fragment that SSE re-renders.
type Board struct {
	GameID           string
	Phase            string
	Step             string
	Round            int
	SecondsRemaining int
	RoundSeconds     int
	Coins            int
	Message          string
	Won              bool
	Lost             bool
	TimedOut         bool
	Locked           bool
	Deck             []CardView
	DeckCapacity     int
	Zones            []SlotView
	OpponentZones    []SlotView
	RosterCount      int
	RoundTimes       []int
	BoardKey         string
}

// CardView is a card as the board draws it.
type CardView struct {
	ID        string
	Name      string
	ImageRef  string
	Damage    int
	Health    int
	MaxHealth int
	// HealthPct is Health as a percentage of MaxHealth for the bar width.
	HealthPct int
	Committed bool
	Dead      bool
}

// SlotView is one fighting zone.
type SlotView struct {
	Index int
	Card  *CardView
}
