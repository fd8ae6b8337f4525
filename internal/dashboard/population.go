package dashboard

// StatePopulation holds resident counts for the states the layoff-rate
// chart covers. States outside this table have no rate.
var StatePopulation = map[string]int64{
	"California":     38889770,
	"Texas":          30976754,
	"Florida":        22975931,
	"New York":       19469232,
	"Pennsylvania":   12951275,
	"Illinois":       12516863,
	"Ohio":           11812173,
	"Georgia":        11145304,
	"North Carolina": 10975017,
	"Michigan":       10041241,
	"New Jersey":     9320865,
	"Virginia":       8752297,
	"Washington":     7841283,
	"Arizona":        7497004,
	"Tennessee":      7204002,
	"Massachusetts":  7020058,
	"Indiana":        6892124,
	"Missouri":       6215144,
	"Maryland":       6196525,
	"Wisconsin":      5931367,
}
