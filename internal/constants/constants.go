package constants

const (
	AppName     = "haki-analytics"
	ConfigFile  = "config.yaml"
	DefaultPort = "6140"

	FilePerm      = 0o600
	DirectoryPerm = 0o700

	// Story Aeneid testnet, where the IP registry contracts live.
	ChainID        = 1315
	ChainName      = "Story Aeneid"
	ChainRPCURL    = "https://aeneid.storyrpc.io/"
	CurrencyName   = "IP"
	CurrencySymbol = "IP"
	CurrencyDec    = 18

	OrgRegistryAddr  = "0x2afce5b30DFD0d53a98e65d23E7D620701023f3C"
	UserRegistryAddr = "0x7466cfc967C4FfF0907eD5BEe8DB067459ad25Fc"

	RegistryRecordsPath = "/documents/icp/records/"
	RegistryBaseURL     = "http://127.0.0.1:8000"

	// en-US short date, as browsers render toLocaleDateString.
	DateLayout = "1/2/2006"

	// Display fallbacks.
	DateNotAvailable  = "N/A"
	DateInvalid       = "Invalid Date Format"
	MissingHash       = "—"
	MissingOwner      = "Unassigned"
	DefaultInitial    = "A"
	RegistryNoneValue = "None"

	// EIP-1193 "user rejected the request".
	UserRejectedCode = 4001
)
