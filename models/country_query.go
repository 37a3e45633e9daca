package models

// CountryQuery carries the $filter, $orderby, $top and $skip options of the
// v2 country listing. Top and Skip are nil when absent.
type CountryQuery struct {
	Filter  string
	OrderBy string
	Top     *int
	Skip    *int
}
