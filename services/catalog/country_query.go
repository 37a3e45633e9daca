package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/upb/hotel-listing/models"
	"github.com/upb/hotel-listing/services"
)

// countryFields maps query field names to accessors. Names are case-insensitive.
var countryFields = map[string]func(*models.Country) string{
	"id":        func(c *models.Country) string { return strconv.Itoa(c.ID) },
	"name":      func(c *models.Country) string { return c.Name },
	"shortname": func(c *models.Country) string { return c.ShortName },
}

type countryPredicate func(*models.Country) bool

type countryOrder struct {
	field string
	desc  bool
}

// applyCountryQuery filters, orders and windows countries. The supported
// $filter subset is `field eq 'value'` and `contains(field,'value')` joined by
// `and`; ids compare as numbers.
func applyCountryQuery(countries []*models.Country, q models.CountryQuery) ([]*models.Country, error) {
	preds, err := parseCountryFilter(q.Filter)
	if err != nil {
		return nil, queryError("$filter", q.Filter, err)
	}
	orders, err := parseCountryOrderBy(q.OrderBy)
	if err != nil {
		return nil, queryError("$orderby", q.OrderBy, err)
	}
	if q.Top != nil && *q.Top < 0 {
		return nil, queryError("$top", strconv.Itoa(*q.Top), fmt.Errorf("must not be negative"))
	}
	if q.Skip != nil && *q.Skip < 0 {
		return nil, queryError("$skip", strconv.Itoa(*q.Skip), fmt.Errorf("must not be negative"))
	}

	out := make([]*models.Country, 0, len(countries))
next:
	for _, c := range countries {
		for _, p := range preds {
			if !p(c) {
				continue next
			}
		}
		out = append(out, c)
	}

	if len(orders) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range orders {
				cmp := compareCountryField(o.field, out[i], out[j])
				if cmp == 0 {
					continue
				}
				if o.desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	if q.Skip != nil {
		if *q.Skip >= len(out) {
			return []*models.Country{}, nil
		}
		out = out[*q.Skip:]
	}
	if q.Top != nil && *q.Top < len(out) {
		out = out[:*q.Top]
	}
	return out, nil
}

func queryError(option, value string, err error) error {
	return services.NewDomainError(services.ErrorTypeValidation,
		fmt.Sprintf("invalid %s: %v", option, err), err).
		WithDetail(option, value)
}

func parseCountryFilter(filter string) ([]countryPredicate, error) {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return nil, nil
	}

	var preds []countryPredicate
	for _, clause := range splitAnd(filter) {
		p, err := parseCountryClause(strings.TrimSpace(clause))
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// splitAnd splits on " and " outside quoted literals.
func splitAnd(s string) []string {
	var parts []string
	inQuote := false
	start := 0
	lower := strings.ToLower(s)
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			inQuote = !inQuote
			continue
		}
		if !inQuote && strings.HasPrefix(lower[i:], " and ") {
			parts = append(parts, s[start:i])
			start = i + len(" and ")
			i += len(" and ") - 1
		}
	}
	return append(parts, s[start:])
}

func parseCountryClause(clause string) (countryPredicate, error) {
	if strings.HasPrefix(strings.ToLower(clause), "contains(") && strings.HasSuffix(clause, ")") {
		args := clause[len("contains(") : len(clause)-1]
		comma := strings.Index(args, ",")
		if comma < 0 {
			return nil, fmt.Errorf("contains needs a field and a literal")
		}
		get, err := countryField(args[:comma])
		if err != nil {
			return nil, err
		}
		lit, err := stringLiteral(args[comma+1:])
		if err != nil {
			return nil, err
		}
		return func(c *models.Country) bool { return strings.Contains(get(c), lit) }, nil
	}

	fields := strings.SplitN(clause, " ", 3)
	if len(fields) != 3 || !strings.EqualFold(fields[1], "eq") {
		return nil, fmt.Errorf("unsupported expression %q", clause)
	}
	get, err := countryField(fields[0])
	if err != nil {
		return nil, err
	}

	raw := strings.TrimSpace(fields[2])
	if strings.EqualFold(strings.TrimSpace(fields[0]), "id") {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("id must be compared with a number")
		}
		want := strconv.Itoa(id)
		return func(c *models.Country) bool { return get(c) == want }, nil
	}
	lit, err := stringLiteral(raw)
	if err != nil {
		return nil, err
	}
	return func(c *models.Country) bool { return get(c) == lit }, nil
}

func countryField(name string) (func(*models.Country) string, error) {
	get, ok := countryFields[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", strings.TrimSpace(name))
	}
	return get, nil
}

// stringLiteral unquotes 'value', where '' stands for a single quote.
func stringLiteral(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != '\'' || raw[len(raw)-1] != '\'' {
		return "", fmt.Errorf("expected a quoted literal, got %s", raw)
	}
	return strings.ReplaceAll(raw[1:len(raw)-1], "''", "'"), nil
}

func parseCountryOrderBy(orderBy string) ([]countryOrder, error) {
	orderBy = strings.TrimSpace(orderBy)
	if orderBy == "" {
		return nil, nil
	}

	var orders []countryOrder
	for _, item := range strings.Split(orderBy, ",") {
		parts := strings.Fields(item)
		if len(parts) == 0 || len(parts) > 2 {
			return nil, fmt.Errorf("unsupported ordering %q", strings.TrimSpace(item))
		}
		field := strings.ToLower(parts[0])
		if _, ok := countryFields[field]; !ok {
			return nil, fmt.Errorf("unknown field %q", parts[0])
		}
		o := countryOrder{field: field}
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				o.desc = true
			default:
				return nil, fmt.Errorf("unknown direction %q", parts[1])
			}
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func compareCountryField(field string, a, b *models.Country) int {
	if field == "id" {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	}
	get := countryFields[field]
	return strings.Compare(get(a), get(b))
}
