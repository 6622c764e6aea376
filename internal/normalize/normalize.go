// Package normalize collapses noisy raw transaction descriptions into short
// canonical labels used for display and as part of the dedup key.
package normalize

import (
	"regexp"
	"strings"
)

// Regexes operate on the uppercased raw description. Merchant location
// conventions end with a city token and a two-letter state code.
var (
	amazonOrderRe = regexp.MustCompile(`AMAZON\s*MKTPL\s+(\w+)`)
	upsStoreRe    = regexp.MustCompile(`UPS STORE \d+\s+(\w+)\s+(\w{2})`)
	hobbyLobbyRe  = regexp.MustCompile(`HOBBYLOBBY\s+(\w+)\s+(\w{2})`)
	walmartRe     = regexp.MustCompile(`WAL MART\s+\d+\s+(\w+)\s+(\w{2})`)
	westlakeRe    = regexp.MustCompile(`WESTLAKE\s+HARDWARE\s+\d+\s+(\w+)\s+(\w{2})`)
	venmoPayeeRe  = regexp.MustCompile(`VENMO\s+([A-Z]+(?:\s+[A-Z]+)*)`)
	venmoPhoneRe  = regexp.MustCompile(`\s+\d{3}\s+\d{3}\s+\d{4}.*`)
	bestBuyNameRe = regexp.MustCompile(`BEST BUY.*?AUTO PYMT\s+([A-Z]+(?:\s+[A-Z]+)*)`)
	quikTripRe    = regexp.MustCompile(`QT\s+\d+\s+(\w+)\s+(\w{2})`)
	quikTripAnyRe = regexp.MustCompile(`QT\s+\d+`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// Merchants whose label is merchant name plus trailing city/state.
var cityStateMerchants = []string{
	"REASORS", "WILDFLOWERCAFE", "ANTHROPOLOGIE", "LULULEMON", "CHIPOTLE",
}

const fallbackPrefixLen = 50

// Shorten derives the canonical short label for a raw description. Rules
// are tested in order, most specific first; when nothing matches, the label
// falls back to a fixed-length prefix of the raw text. Total: never fails.
func Shorten(raw string) string {
	raw = whitespaceRe.ReplaceAllString(strings.TrimSpace(raw), " ")
	d := strings.ToUpper(raw)

	// Marketplace payouts.
	if strings.Contains(d, "ACH DEPOSIT ETSY") ||
		(strings.Contains(d, "ETSY, INC") && strings.Contains(d, "PAYOUT")) {
		return "ETSY PAYOUT"
	}

	// Amazon marketplace orders keep their order-ID suffix.
	if m := amazonOrderRe.FindStringSubmatch(d); m != nil {
		return "AMAZON MKTPL " + m[1]
	}

	if strings.Contains(d, "UPS STORE") {
		if m := upsStoreRe.FindStringSubmatch(d); m != nil {
			return "UPS STORE " + m[1] + " " + m[2]
		}
		return "UPS STORE"
	}

	if strings.Contains(d, "USPS") && strings.Contains(d, "CLICKNSHIP") {
		return "USPS CLICKNSHIP"
	}

	if strings.Contains(d, "HOBBYLOBBY") {
		if m := hobbyLobbyRe.FindStringSubmatch(d); m != nil {
			return "HOBBYLOBBY " + m[1] + " " + m[2]
		}
		return "HOBBYLOBBY"
	}

	if strings.Contains(d, "WAL MART") {
		if m := walmartRe.FindStringSubmatch(d); m != nil {
			return "WAL MART " + m[1] + " " + m[2]
		}
		return "WAL MART"
	}

	if strings.Contains(d, "WESTLAKE HARDWARE") {
		if m := westlakeRe.FindStringSubmatch(d); m != nil {
			return "WESTLAKE HARDWARE " + m[1] + " " + m[2]
		}
		return "WESTLAKE HARDWARE"
	}

	if strings.Contains(d, "ETSY COM US") {
		return "ETSY COM US"
	}

	// Payment-processor sub-merchants before the generic processor name.
	if strings.Contains(d, "PAYPAL") {
		switch {
		case strings.Contains(d, "ALIPAYUSINC"):
			return "PAYPAL ALIPAYUSINC"
		case strings.Contains(d, "AOWEIKEGTTA"):
			return "PAYPAL AOWEIKEGTTA"
		case strings.Contains(d, "THANGS"):
			return "PAYPAL THANGS 3D"
		}
	}

	if strings.Contains(d, "VENMO") {
		if m := venmoPayeeRe.FindStringSubmatch(d); m != nil {
			name := venmoPhoneRe.ReplaceAllString(strings.TrimSpace(m[1]), "")
			return "VENMO " + name
		}
		return "VENMO"
	}

	if strings.Contains(d, "BEST BUY") {
		if m := bestBuyNameRe.FindStringSubmatch(d); m != nil {
			return "BEST BUY AUTO PYMT " + strings.TrimSpace(m[1])
		}
		return "BEST BUY AUTO PYMT"
	}

	if quikTripAnyRe.MatchString(d) {
		if m := quikTripRe.FindStringSubmatch(d); m != nil {
			return "QT " + m[1] + " " + m[2]
		}
		return "QT"
	}

	for _, merchant := range cityStateMerchants {
		if !strings.Contains(d, merchant) {
			continue
		}
		if m := cityStateAfter(d, merchant); m != "" {
			return merchant + " " + m
		}
		return merchant
	}

	// Unknown merchant: fixed-length rune prefix of the cleaned raw text.
	if runes := []rune(raw); len(runes) > fallbackPrefixLen {
		return strings.TrimSpace(string(runes[:fallbackPrefixLen]))
	}
	return raw
}

// cityStateAfter extracts a trailing "CITY ST" token pair following the
// merchant name, tolerating card-number noise in between.
func cityStateAfter(d, merchant string) string {
	re, err := regexp.Compile(merchant + `[^A-Z]*?(\w+)\s+(\w{2})$`)
	if err != nil {
		return ""
	}
	if m := re.FindStringSubmatch(d); m != nil {
		return m[1] + " " + m[2]
	}
	loose, err := regexp.Compile(merchant + `.*?(\w{4,})\s+(\w{2})`)
	if err != nil {
		return ""
	}
	if m := loose.FindStringSubmatch(d); m != nil {
		return m[1] + " " + m[2]
	}
	return ""
}
