// Package errors provides the coded error type used across superpet-api.
//
// Every layer returns *Error values carrying a Code, a player-facing message
// and optional metadata. Conditions where a game action simply cannot go
// ahead (no scroll, not enough gold, pet knocked out) are FailedPrecondition
// or ResourceExhausted errors tagged with a Reason:
//
//	if inv.Quantity(scrollID) == 0 {
//	    return nil, errors.Insufficient(errors.ReasonMissingScroll, "no %s left", scrollID)
//	}
//
// Callers branch on the reason rather than parsing messages:
//
//	if errors.HasReason(err, errors.ReasonNoActiveCharacter) {
//	    // prompt the player to create or select a pet
//	}
//
// Configuration is validated with the builder:
//
//	vb := errors.NewValidationBuilder()
//	if cfg.Store == nil {
//	    vb.RequiredField("Store")
//	}
//	return vb.Build()
//
// Handlers convert at the transport edge with ToGRPCError; reason and other
// metadata ride along as a structpb.Struct status detail. The cloud-save
// client maps HTTP responses back into codes with CodeFromHTTPStatus.
package errors
