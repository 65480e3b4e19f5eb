package errors

// Reason identifies why a game action could not proceed.
type Reason string

// Reasons surfaced to players. They travel in error metadata under MetaReason.
const (
	ReasonNoActiveCharacter     Reason = "no_active_character"
	ReasonCharacterLimit        Reason = "character_limit"
	ReasonLowHP                 Reason = "low_hp"
	ReasonHPFull                Reason = "hp_full"
	ReasonNotFood               Reason = "not_food"
	ReasonNotEquipment          Reason = "not_equipment"
	ReasonItemEquipped          Reason = "item_equipped"
	ReasonInsufficientGold      Reason = "insufficient_gold"
	ReasonInsufficientGem       Reason = "insufficient_gem"
	ReasonInsufficientMaterials Reason = "insufficient_materials"
	ReasonMissingScroll         Reason = "missing_scroll"
	ReasonWrongScroll           Reason = "wrong_scroll"
	ReasonMaxEnhanceLevel       Reason = "max_enhance_level"
	ReasonNotForSale            Reason = "not_for_sale"
	ReasonBattleNotActive       Reason = "battle_not_active"
	ReasonMissionIncomplete     Reason = "mission_incomplete"
	ReasonMissionClaimed        Reason = "mission_claimed"
)

// NoActiveCharacter is returned by progression calls made while the player
// has no selected character.
func NoActiveCharacter() *Error {
	return FailedPrecondition("no active character").WithReason(ReasonNoActiveCharacter)
}

// CannotProceed builds a failed precondition error tagged with reason.
func CannotProceed(reason Reason, message string) *Error {
	return FailedPrecondition(message).WithReason(reason)
}

// CannotProceedf is CannotProceed with a formatted message.
func CannotProceedf(reason Reason, format string, args ...interface{}) *Error {
	return FailedPreconditionf(format, args...).WithReason(reason)
}

// Insufficient builds a resource exhausted error tagged with reason.
func Insufficient(reason Reason, format string, args ...interface{}) *Error {
	return ResourceExhaustedf(format, args...).WithReason(reason)
}

// GetReason returns the reason carried by err, or "" when there is none.
func GetReason(err error) Reason {
	meta := GetMeta(err)
	if meta == nil {
		return ""
	}
	r, _ := meta[MetaReason].(string)
	return Reason(r)
}

// HasReason reports whether err carries the given reason.
func HasReason(err error, reason Reason) bool {
	return GetReason(err) == reason
}
