package sieverule

import "strings"

// MatchType is an entry of the match-type vocabulary.
type MatchType struct {
	// Name is the key used by rule mappers ("is", "ge", ...).
	Name string
	// Tag is the Sieve tag implementing the match ("ge" is ":value").
	Tag string
	// Operator is the relational operator that follows Tag, if any.
	Operator string
	// NotName is the negated form exposed to mappers.
	NotName    string
	Capability string
}

// AddressPart is an entry of the address-part vocabulary.
type AddressPart struct {
	Name       string
	Tag        string
	Capability string
}

// Comparator is an entry of the comparator vocabulary. Comparators are
// catalogued for lookups but the :comparator tag itself is rejected.
type Comparator struct {
	Name       string
	Capability string
}

// Header is a shortcut naming a group of header fields.
type Header struct {
	Name   string
	Fields []string
}

var matchTypes = []MatchType{
	{Name: "is", Tag: ":is"},
	{Name: "contains", Tag: ":contains"},
	{Name: "matches", Tag: ":matches"},
	{Name: "regex", Tag: ":regex", Capability: "regex"},
	{Name: "value", Tag: ":value", Capability: "relational"},
	{Name: "count", Tag: ":count", Capability: "relational"},
	{Name: "ge", Tag: ":value", Operator: "ge", Capability: "relational"},
	{Name: "le", Tag: ":value", Operator: "le", Capability: "relational"},
	{Name: "over", Tag: ":over"},
	{Name: "under", Tag: ":under"},
}

var addressParts = []AddressPart{
	{Name: "all", Tag: ":all"},
	{Name: "localpart", Tag: ":localpart"},
	{Name: "domain", Tag: ":domain"},
	{Name: "user", Tag: ":user", Capability: "subaddress"},
	{Name: "detail", Tag: ":detail", Capability: "subaddress"},
}

var comparators = []Comparator{
	{Name: "i;ascii-casemap"},
	{Name: "i;octet"},
	{Name: "i;ascii-numeric", Capability: "comparator-i;ascii-numeric"},
	{Name: "i;unicode-casemap", Capability: "comparator-i;unicode-casemap"},
}

var headers = []Header{
	{Name: "from", Fields: []string{"From"}},
	{Name: "to", Fields: []string{"To"}},
	{Name: "cc", Fields: []string{"Cc"}},
	{Name: "bcc", Fields: []string{"Bcc"}},
	{Name: "subject", Fields: []string{"Subject"}},
	{Name: "sender", Fields: []string{"Sender"}},
	{Name: "replyto", Fields: []string{"Reply-To"}},
	{Name: "anyrecipient", Fields: []string{"To", "Cc"}},
	{Name: "mailinglist", Fields: []string{"List-Id", "X-BeenThere", "X-Mailinglist", "X-Mailing-List"}},
}

var relationalOperators = map[string]bool{
	"gt": true, "ge": true, "lt": true, "le": true, "eq": true, "ne": true,
}

func init() {
	for i := range matchTypes {
		matchTypes[i].NotName = "not " + matchTypes[i].Name
	}
}

// MatchTypes returns the match-type catalog.
func MatchTypes() []MatchType {
	out := make([]MatchType, len(matchTypes))
	copy(out, matchTypes)
	return out
}

// MatchTypeByName resolves a mapper name, accepting the negated form. The
// second result reports whether the name was negated.
func MatchTypeByName(name string) (MatchType, bool, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	negated := false
	if rest, ok := strings.CutPrefix(name, "not "); ok {
		name, negated = strings.TrimSpace(rest), true
	}
	for _, m := range matchTypes {
		if m.Name == name {
			return m, negated, true
		}
	}
	return MatchType{}, false, false
}

// MatchTypeByTag resolves a Sieve tag such as ":contains". For ":value" and
// ":count" the operator selects the shortcut entry when one exists.
func MatchTypeByTag(tag, operator string) (MatchType, bool) {
	tag = strings.ToLower(tag)
	var found *MatchType
	for i := range matchTypes {
		m := &matchTypes[i]
		if m.Tag != tag {
			continue
		}
		if m.Operator != "" && m.Operator == operator {
			return *m, true
		}
		if m.Operator == "" && found == nil {
			found = m
		}
	}
	if found == nil {
		return MatchType{}, false
	}
	return *found, true
}

func AddressParts() []AddressPart {
	out := make([]AddressPart, len(addressParts))
	copy(out, addressParts)
	return out
}

func AddressPartByName(name string) (AddressPart, bool) {
	name = strings.TrimPrefix(strings.ToLower(name), ":")
	for _, p := range addressParts {
		if p.Name == name {
			return p, true
		}
	}
	return AddressPart{}, false
}

func Comparators() []Comparator {
	out := make([]Comparator, len(comparators))
	copy(out, comparators)
	return out
}

func ComparatorByName(name string) (Comparator, bool) {
	for _, c := range comparators {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Comparator{}, false
}

// HeaderByName resolves a header shortcut. The returned field list is a copy.
func HeaderByName(name string) (Header, bool) {
	name = strings.ToLower(name)
	for _, h := range headers {
		if h.Name == name {
			fields := make([]string, len(h.Fields))
			copy(fields, h.Fields)
			return Header{Name: h.Name, Fields: fields}, true
		}
	}
	return Header{}, false
}

func Headers() []Header {
	out := make([]Header, 0, len(headers))
	for _, h := range headers {
		hh, _ := HeaderByName(h.Name)
		out = append(out, hh)
	}
	return out
}

// IsRelationalOperator reports whether op is a valid relational match operator.
func IsRelationalOperator(op string) bool {
	return relationalOperators[strings.ToLower(op)]
}
