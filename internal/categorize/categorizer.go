// Package categorize assigns spending/income categories to transactions
// from their descriptions. Rule order is part of the contract: multiple
// rules can textually match and the first one wins.
package categorize

import (
	"sort"
	"strings"

	"github.com/harpergrove/skein/internal/model"
)

// Category names used by the built-in rules.
const (
	CategoryEtsyPayout     = "Etsy Payout"
	CategoryOtherDeposit   = "Other Deposit"
	CategoryAmazonInv      = "Amazon Inventory"
	CategoryShipping       = "Shipping"
	CategoryCraftSupplies  = "Craft Supplies"
	CategoryAliExpress     = "AliExpress Supplies"
	CategoryEtsyFees       = "Etsy Fees"
	CategoryOwnerDrawTulsa = "Owner Draw - Tulsa"
	CategoryBusinessCard   = "Business Credit Card"
	CategorySubscriptions  = "Subscriptions"
	CategoryUncategorized  = "Uncategorized"
)

// debitRule matches when every substring in all matches and, if any is
// non-empty, at least one substring in any matches.
type debitRule struct {
	category string
	all      []string
	any      []string
}

// Ordered: more specific processor/sub-merchant combinations sit above the
// generic rules that would also match them.
var debitRules = []debitRule{
	{category: CategoryAmazonInv, all: []string{"AMAZON MKTPL"}},
	{category: CategoryShipping, any: []string{"UPS STORE", "USPS"}},
	{category: CategoryShipping, all: []string{"WAL MART"}},
	{category: CategoryCraftSupplies, any: []string{"HOBBYLOBBY", "HOBBY LOBBY"}},
	{category: CategoryCraftSupplies, all: []string{"WESTLAKE HARDWARE"}},
	{category: CategoryAliExpress, all: []string{"PAYPAL"}, any: []string{"ALIPAY", "AOWEIKE"}},
	{category: CategoryEtsyFees, all: []string{"ETSY COM"}},
	{category: CategorySubscriptions, all: []string{"PAYPAL", "THANGS"}},
	{category: CategoryBusinessCard, all: []string{"BEST BUY", "AUTO PYMT"}},
	// P2P transfers default to an owner draw; config overrides reassign
	// specific payees.
	{category: CategoryOwnerDrawTulsa, all: []string{"VENMO"}},
	// Personal spending merchants are owner draws.
	{category: CategoryOwnerDrawTulsa, any: []string{
		"REASORS", "CHIPOTLE", "WILDFLOWERCAFE", "ANTHROPOLOGIE", "LULULEMON", "QT ",
	}},
}

type override struct {
	pattern  string
	category string
}

// Categorizer is a pure, order-sensitive description-to-category function.
type Categorizer struct {
	overrides []override
}

// New creates a categorizer. The configured overrides are checked before
// any built-in rule. Map iteration order is not deterministic, so overrides
// are ordered longest-pattern-first (more specific wins) with a lexical
// tiebreak, keeping repeated runs identical.
func New(configOverrides map[string]string) *Categorizer {
	overrides := make([]override, 0, len(configOverrides))
	for pattern, category := range configOverrides {
		overrides = append(overrides, override{
			pattern:  strings.ToUpper(pattern),
			category: category,
		})
	}
	sort.Slice(overrides, func(i, j int) bool {
		if len(overrides[i].pattern) != len(overrides[j].pattern) {
			return len(overrides[i].pattern) > len(overrides[j].pattern)
		}
		return overrides[i].pattern < overrides[j].pattern
	})
	return &Categorizer{overrides: overrides}
}

// Categorize maps a description to its category.
func (c *Categorizer) Categorize(desc string, kind model.Kind) string {
	d := strings.ToUpper(desc)

	for _, o := range c.overrides {
		if strings.Contains(d, o.pattern) {
			return o.category
		}
	}

	if kind == model.KindDeposit {
		if strings.Contains(d, "ETSY") {
			return CategoryEtsyPayout
		}
		return CategoryOtherDeposit
	}

	for _, rule := range debitRules {
		if rule.matches(d) {
			return rule.category
		}
	}
	return CategoryUncategorized
}

func (r debitRule) matches(d string) bool {
	for _, sub := range r.all {
		if !strings.Contains(d, sub) {
			return false
		}
	}
	if len(r.any) == 0 {
		return true
	}
	for _, sub := range r.any {
		if strings.Contains(d, sub) {
			return true
		}
	}
	return false
}
