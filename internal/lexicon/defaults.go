package lexicon

// Default ticker universe. Symbols outside [A-Z]{2,5} (crypto pairs, "F")
// can never be tokenised, so they are listed only in defaultNames.
var defaultUniverse = []string{
	"GME", "AMC", "TSLA", "META", "NVDA", "AMD", "AAPL", "MSFT", "GOOGL", "AMZN",
	"PLTR", "HOOD", "COIN", "SOFI", "CLOV", "WISH", "SNDL", "NOK", "BB", "EXPR",
	"KOSS", "NAKD", "SIRI",
	"SPY", "QQQ", "IWM", "VIX", "DIA", "TLT", "GLD", "SLV", "OIL", "GAS",
	"BABA", "NIO", "XPEV", "LI", "RIVN", "LCID", "GM", "NKLA", "RIDE",
	"SPCE", "ARKK", "ARKF", "ARKG", "MVIS", "SENS", "BNGO", "OCGN", "PROG", "BBIG",
}

var defaultNames = map[string]string{
	"GME":      "GameStop Corp",
	"AMC":      "AMC Entertainment Holdings Inc",
	"TSLA":     "Tesla Inc",
	"META":     "Meta Platforms Inc",
	"NVDA":     "NVIDIA Corporation",
	"AMD":      "Advanced Micro Devices Inc",
	"AAPL":     "Apple Inc",
	"MSFT":     "Microsoft Corporation",
	"GOOGL":    "Alphabet Inc",
	"AMZN":     "Amazon.com Inc",
	"PLTR":     "Palantir Technologies Inc",
	"HOOD":     "Robinhood Markets Inc",
	"COIN":     "Coinbase Global Inc",
	"SOFI":     "SoFi Technologies Inc",
	"CLOV":     "Clover Health Investments Corp",
	"WISH":     "ContextLogic Inc",
	"SNDL":     "Sundial Growers Inc",
	"NOK":      "Nokia Corporation",
	"BB":       "BlackBerry Limited",
	"EXPR":     "Express Inc",
	"KOSS":     "Koss Corporation",
	"NAKD":     "Naked Brand Group Limited",
	"SIRI":     "Sirius XM Holdings Inc",
	"DOGE-USD": "Dogecoin",
	"BTC-USD":  "Bitcoin",
	"ETH-USD":  "Ethereum",
	"SHIB-USD": "Shiba Inu",
	"ADA-USD":  "Cardano",
	"SPY":      "SPDR S&P 500 ETF Trust",
	"QQQ":      "Invesco QQQ Trust",
	"IWM":      "iShares Russell 2000 ETF",
	"VIX":      "CBOE Volatility Index",
	"DIA":      "SPDR Dow Jones Industrial Average ETF Trust",
	"TLT":      "iShares 20+ Year Treasury Bond ETF",
	"GLD":      "SPDR Gold Shares",
	"SLV":      "iShares Silver Trust",
	"OIL":      "United States Oil Fund",
	"GAS":      "United States Gasoline Fund",
	"BABA":     "Alibaba Group Holding Limited",
	"NIO":      "NIO Inc",
	"XPEV":     "XPeng Inc",
	"LI":       "Li Auto Inc",
	"RIVN":     "Rivian Automotive Inc",
	"LCID":     "Lucid Group Inc",
	"F":        "Ford Motor Company",
	"GM":       "General Motors Company",
	"NKLA":     "Nikola Corporation",
	"RIDE":     "Lordstown Motors Corp",
	"SPCE":     "Virgin Galactic Holdings Inc",
	"ARKK":     "ARK Innovation ETF",
	"ARKF":     "ARK Fintech Innovation ETF",
	"ARKG":     "ARK Genomics Revolution ETF",
	"MVIS":     "MicroVision Inc",
	"SENS":     "Senseonics Holdings Inc",
	"BNGO":     "Bionano Genomics Inc",
	"OCGN":     "Ocugen Inc",
	"PROG":     "Progenity Inc",
	"BBIG":     "Vinco Ventures Inc",
}

var defaultPositive = []string{
	"buy", "bullish", "moon", "rocket", "diamond", "hands", "hold", "hodl",
	"squeeze", "gain", "profit", "up", "rise", "call", "calls", "long",
	"pump", "rally", "breakout", "momentum", "strong", "support", "bull",
}

var defaultNegative = []string{
	"sell", "bearish", "crash", "drop", "fall", "puts", "put", "short",
	"dump", "loss", "down", "bear", "red", "baghold", "panic", "fear",
	"resistance", "weak", "dip", "correction", "bubble", "overvalued",
}

// Disambiguating substrings: any hit (case-insensitive) suppresses the ticker for that text.
var defaultFalsePositives = map[string][]string{
	"GM":    {"good morning", "gm all", "gm everyone", "gm frens"},
	"LI":    {"linkedin"},
	"DIA":   {"diamond"},
	"OIL":   {"olive oil", "oil change"},
	"GAS":   {"gas station", "gas prices", "gas money"},
	"RIDE":  {"ride the", "along for the ride"},
	"WISH":  {"i wish", "wish i", "wish me"},
	"HOOD":  {"neighborhood", "neighbourhood", "the hood"},
	"COIN":  {"coin flip", "crypto coin", "meme coin"},
	"SENS":  {"sensitive", "sense"},
	"AM":    {"morning", "a.m.", "time"},
	"PM":    {"evening", "p.m.", "time"},
	"IT":    {"information", "technology", "tech"},
	"AI":    {"artificial", "intelligence"},
	"DD":    {"due", "diligence"},
	"CEO":   {"chief", "executive", "officer"},
	"CFO":   {"chief", "financial", "officer"},
	"IPO":   {"initial", "public", "offering"},
	"SEC":   {"securities", "exchange", "commission"},
	"FDA":   {"food", "drug", "administration"},
	"US":    {"united", "states", "america"},
	"UK":    {"united", "kingdom", "britain"},
	"EU":    {"european", "union"},
	"NY":    {"new", "york"},
	"CA":    {"california"},
	"LA":    {"los", "angeles"},
	"TV":    {"television"},
	"PC":    {"personal", "computer"},
	"PR":    {"public", "relations"},
	"HR":    {"human", "resources"},
	"IR":    {"investor", "relations"},
	"RE":    {"real", "estate"},
	"PE":    {"private", "equity"},
	"VC":    {"venture", "capital"},
	"ROI":   {"return", "investment"},
	"EPS":   {"earnings", "per", "share"},
	"CAPEX": {"capital", "expenditure"},
	"OPEX":  {"operating", "expenditure"},
}
