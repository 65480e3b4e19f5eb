package cloudsync

// IssueSource says why gems were credited.
type IssueSource string

// Issue sources accepted by the gem API.
const (
	IssuePurchase     IssueSource = "purchase"
	IssueReward       IssueSource = "reward"
	IssueEvent        IssueSource = "event"
	IssueCompensation IssueSource = "compensation"
	IssueAdmin        IssueSource = "admin"
)

// IssueSources lists every accepted issue source.
var IssueSources = []IssueSource{IssuePurchase, IssueReward, IssueEvent, IssueCompensation, IssueAdmin}

// Valid reports whether s is an accepted issue source.
func (s IssueSource) Valid() bool {
	for _, known := range IssueSources {
		if s == known {
			return true
		}
	}
	return false
}

// UseSource says what gems were spent on.
type UseSource string

// Use sources accepted by the gem API.
const (
	UseCreateCharacter UseSource = "create_character"
	UseRevive          UseSource = "revive"
	UseShopItem        UseSource = "shop_item"
	UseGacha           UseSource = "gacha"
	UseUpgrade         UseSource = "upgrade"
)

// UseSources lists every accepted use source.
var UseSources = []UseSource{UseCreateCharacter, UseRevive, UseShopItem, UseGacha, UseUpgrade}

// Valid reports whether s is an accepted use source.
func (s UseSource) Valid() bool {
	for _, known := range UseSources {
		if s == known {
			return true
		}
	}
	return false
}
