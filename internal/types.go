package internal

// FieldRole is the stable identifier substring that locates one data cell
// inside a contract row. The tokens come from the ASP.NET control ids the
// source site renders into every row.
type FieldRole string

const (
	RoleContractID     FieldRole = "lblCustomerId"
	RoleDescription    FieldRole = "lblContactName"
	RoleContractors    FieldRole = "lblCountry"
	RoleOffice         FieldRole = "Label5"
	RoleFunds          FieldRole = "Label6"
	RoleCost           FieldRole = "Label2"
	RoleEffectivity    FieldRole = "Label3"
	RoleExpiry         FieldRole = "Label4"
	RoleStatus         FieldRole = "Label7"
	RoleAccomplishment FieldRole = "Label1"
)

// ContractorEntry is one contractor parsed out of a joint-venture list.
// HasSlash marks names that still contain a slash after splitting; those
// are legitimate in-name slashes, kept for manual review.
type ContractorEntry struct {
	Name     string
	ID       *string
	HasSlash bool
}

type ContractRecord struct {
	RowNumber          *string
	ContractID         *string
	Description        *string
	ContractorName1    *string
	ContractorID1      *string
	ContractorName2    *string
	ContractorID2      *string
	ContractorName3    *string
	ContractorID3      *string
	ContractorName4    *string
	ContractorID4      *string
	Region             *string
	ImplementingOffice *string
	SourceOfFunds      *string
	CostPHP            *float64
	EffectivityDate    *string
	ExpiryDate         *string
	Status             *string
	AccomplishmentPct  *float64
	Year               int
	SourceOffice       string
	FileSource         string
	CriticalErrors     *string
	Errors             *string
	Warnings           *string
	InfoNotes          *string
}

// DocumentInfo identifies one scraped HTML file plus the year and office
// label encoded in its filename.
type DocumentInfo struct {
	Path   string
	Year   int
	Office string
}
