package crm

import "github.com/warp/records-engine/generic"

// Repository aliases keep signatures short at the call sites.
type (
	PartyRepository       = generic.Repository[Party, PartyFields]
	OpportunityRepository = generic.Repository[Opportunity, OpportunityFields]
	ActionItemRepository  = generic.Repository[ActionItem, ActionItemFields]
)

// Book bundles the three repositories handed to callers.
type Book struct {
	Parties       PartyRepository
	Opportunities OpportunityRepository
	ActionItems   ActionItemRepository
}
