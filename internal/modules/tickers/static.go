package tickers

// etfLeaders is the curated list of large, liquid ETFs included alongside
// the index constituents. These rarely change; the list is maintained here
// rather than scraped.
var etfLeaders = []string{
	"SPY", "VOO", "IVV", "VTI", "QQQ", "QQQM", "VUG", "VTV", "SCHD",
	"VYM", "VIG", "DGRO", "IWM", "IWF", "IWD", "DIA", "RSP", "MGK",
	"XLK", "XLF", "XLV", "XLE", "XLI", "XLY", "XLP", "XLU", "XLB",
	"SMH", "SOXX", "VGT", "IGV", "ARKK", "JEPI", "JEPQ", "GLD", "SLV",
	"EFA", "VEA", "VWO", "IEMG", "AGG", "BND", "TLT", "LQD", "HYG",
}

// StaticSource serves a fixed symbol list
type StaticSource struct {
	name    string
	symbols []string
}

// NewETFLeadersSource returns the curated ETF list as a source
func NewETFLeadersSource() *StaticSource {
	return &StaticSource{name: "etf-leaders", symbols: etfLeaders}
}

// NewStaticSource builds a source over an arbitrary fixed list
func NewStaticSource(name string, symbols []string) *StaticSource {
	return &StaticSource{name: name, symbols: symbols}
}

// Name returns the source name
func (s *StaticSource) Name() string {
	return s.name
}

// Discover returns a copy of the fixed list
func (s *StaticSource) Discover() ([]string, error) {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out, nil
}
