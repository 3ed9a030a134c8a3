package ingestion

import "strings"

// DefaultBankSenders are the bank and payment apps whose notifications are ingested
var DefaultBankSenders = []string{
	"com.google.android.apps.nbu.paisa.user", // Google Pay
	"net.one97.paytm",
	"com.phonepe.app",
	"in.amazon.mShop.android.shopping",
	"com.icicibank.imobile",
	"com.sbi.upi",
	"com.hdfc.bank",
	"com.axis.mobile",
	"com.csam.icici.bank.imobile",
	"com.mobikwik_new",
	"com.freecharge.android",
	"com.myairtelapp",
}

// SenderAllowlist filters notification sources before any parsing happens
type SenderAllowlist struct {
	senders map[string]struct{}
	ordered []string
}

// NewSenderAllowlist builds an allowlist; an empty list means DefaultBankSenders
func NewSenderAllowlist(senders []string) *SenderAllowlist {
	if len(senders) == 0 {
		senders = DefaultBankSenders
	}
	a := &SenderAllowlist{senders: make(map[string]struct{}, len(senders))}
	for _, s := range senders {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := a.senders[s]; dup {
			continue
		}
		a.senders[s] = struct{}{}
		a.ordered = append(a.ordered, s)
	}
	return a
}

// Allows reports whether the sender is on the list. Matching is exact.
func (a *SenderAllowlist) Allows(sender string) bool {
	_, ok := a.senders[sender]
	return ok
}

// Senders returns the allowed senders in configuration order
func (a *SenderAllowlist) Senders() []string {
	return append([]string(nil), a.ordered...)
}
