package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harpergrove/skein/internal/model"
)

func TestCategorizer_Deposits(t *testing.T) {
	c := New(nil)

	assert.Equal(t, CategoryEtsyPayout, c.Categorize("ETSY PAYOUT", model.KindDeposit))
	assert.Equal(t, CategoryOtherDeposit, c.Categorize("WIRE TRANSFER IN", model.KindDeposit))
}

func TestCategorizer_DebitRuleOrder(t *testing.T) {
	c := New(nil)

	tests := []struct {
		name string
		desc string
		want string
	}{
		{name: "amazon inventory", desc: "AMAZON MKTPL XY12AB", want: CategoryAmazonInv},
		{name: "ups store shipping", desc: "UPS STORE TULSA OK", want: CategoryShipping},
		{name: "usps shipping", desc: "USPS CLICKNSHIP", want: CategoryShipping},
		{name: "walmart is shipping supplies", desc: "WAL MART TULSA OK", want: CategoryShipping},
		{name: "hobby lobby craft supplies", desc: "HOBBYLOBBY TULSA OK", want: CategoryCraftSupplies},
		{name: "westlake hardware craft supplies", desc: "WESTLAKE HARDWARE TULSA OK", want: CategoryCraftSupplies},
		{
			name: "paypal alipay combination outranks generic rules",
			desc: "PAYPAL ALIPAYUSINC",
			want: CategoryAliExpress,
		},
		{name: "etsy com is fees not payout", desc: "ETSY COM US", want: CategoryEtsyFees},
		{name: "paypal thangs subscription", desc: "PAYPAL THANGS 3D", want: CategorySubscriptions},
		{name: "best buy auto payment", desc: "BEST BUY AUTO PYMT JOHN Q PUBLIC", want: CategoryBusinessCard},
		{name: "venmo defaults to owner draw", desc: "VENMO JANE DOE", want: CategoryOwnerDrawTulsa},
		{name: "personal merchant owner draw", desc: "CHIPOTLE TULSA OK", want: CategoryOwnerDrawTulsa},
		{name: "quiktrip owner draw", desc: "QT TULSA OK", want: CategoryOwnerDrawTulsa},
		{name: "nothing matches", desc: "MYSTERY MERCHANT 42", want: CategoryUncategorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Categorize(tt.desc, model.KindDebit))
		})
	}
}

func TestCategorizer_ConfigOverridesWinOverBuiltins(t *testing.T) {
	c := New(map[string]string{
		"VENMO JANE": "Owner Draw - Gigi",
	})

	// Override pattern matches case-insensitively and beats the built-in
	// venmo rule.
	assert.Equal(t, "Owner Draw - Gigi", c.Categorize("venmo jane doe", model.KindDebit))
	// Other venmo payees still fall through to the default.
	assert.Equal(t, CategoryOwnerDrawTulsa, c.Categorize("VENMO JOHN ROE", model.KindDebit))
	// Overrides apply to deposits too.
	c2 := New(map[string]string{"REFUND": "Etsy Fees"})
	assert.Equal(t, "Etsy Fees", c2.Categorize("ETSY REFUND", model.KindDeposit))
}

func TestCategorizer_OverrideOrderIsDeterministic(t *testing.T) {
	// Two overlapping overrides: the longer (more specific) pattern wins
	// regardless of map iteration order.
	c := New(map[string]string{
		"VENMO":          "Owner Draw - Tulsa",
		"VENMO JANE DOE": "Owner Draw - Gigi",
	})

	for i := 0; i < 20; i++ {
		assert.Equal(t, "Owner Draw - Gigi", c.Categorize("VENMO JANE DOE 123", model.KindDebit))
	}
}
