package story

// Scenario is a canned Given/When/Then scenario body.
type Scenario struct {
	Name  string
	Given string
	When  string
	Then  string
}

// CatalogEntry maps a feature type to its detection keywords and template.
type CatalogEntry struct {
	Type        FeatureType
	Keywords    []string
	DisplayName string
	Scenarios   []Scenario
}

// catalog is the fixed template table. Order matters: classification ties
// resolve to the earliest entry, so the order is part of the contract.
var catalog = []CatalogEntry{
	{
		Type:        FeatureAuthentication,
		Keywords:    []string{"auth", "login", "register", "sign", "password", "token"},
		DisplayName: "User Authentication",
		Scenarios: []Scenario{
			{
				Name:  "Successful authentication",
				Given: "I am on the login page",
				When:  "I enter valid credentials",
				Then:  "I should be logged in successfully",
			},
			{
				Name:  "Invalid credentials",
				Given: "I am on the login page",
				When:  "I enter invalid credentials",
				Then:  "I should see an error message",
			},
		},
	},
	{
		Type:        FeatureCRUD,
		Keywords:    []string{"create", "add", "edit", "update", "delete", "remove", "manage"},
		DisplayName: "Data Management",
		Scenarios: []Scenario{
			{
				Name:  "Create new item",
				Given: "I am on the management page",
				When:  "I create a new item with valid information",
				Then:  "the item should be saved successfully",
			},
			{
				Name:  "Update existing item",
				Given: "I have an existing item",
				When:  "I update the item information",
				Then:  "the changes should be saved",
			},
		},
	},
	{
		Type:        FeatureAPI,
		Keywords:    []string{"api", "endpoint", "service", "rest", "graphql"},
		DisplayName: "API Integration",
		Scenarios: []Scenario{
			{
				Name:  "Successful API call",
				Given: "the API is available",
				When:  "I make a valid API request",
				Then:  "I should receive the correct response",
			},
			{
				Name:  "Handle API errors",
				Given: "the API is unavailable",
				When:  "I make an API request",
				Then:  "I should receive an appropriate error message",
			},
		},
	},
	{
		Type:        FeatureSearch,
		Keywords:    []string{"search", "find", "filter", "query", "lookup"},
		DisplayName: "Search Functionality",
		Scenarios: []Scenario{
			{
				Name:  "Successful search",
				Given: "I am on the search page",
				When:  "I enter a search term and click search",
				Then:  "I should see relevant results",
			},
			{
				Name:  "No search results",
				Given: "I am on the search page",
				When:  "I search for a term with no matches",
				Then:  "I should see a no results message",
			},
		},
	},
	{
		Type:        FeatureFileManagement,
		Keywords:    []string{"file", "upload", "download", "attach", "document"},
		DisplayName: "File Management",
		Scenarios: []Scenario{
			{
				Name:  "Upload file successfully",
				Given: "I am on the file upload page",
				When:  "I select and upload a valid file",
				Then:  "the file should be uploaded successfully",
			},
			{
				Name:  "Invalid file type",
				Given: "I am on the file upload page",
				When:  "I try to upload an invalid file type",
				Then:  "I should see an error message",
			},
		},
	},
	{
		Type:        FeatureNotification,
		Keywords:    []string{"notification", "alert", "message", "email", "notify"},
		DisplayName: "Notification System",
		Scenarios: []Scenario{
			{
				Name:  "Receive notification",
				Given: "I have notifications enabled",
				When:  "an event occurs that requires notification",
				Then:  "I should receive a notification",
			},
			{
				Name:  "Mark notification as read",
				Given: "I have unread notifications",
				When:  "I click on a notification",
				Then:  "it should be marked as read",
			},
		},
	},
}

// CatalogEntryFor returns the catalog entry for a feature type, or nil for
// general (which has no canned template).
func CatalogEntryFor(ft FeatureType) *CatalogEntry {
	for i := range catalog {
		if catalog[i].Type == ft {
			return &catalog[i]
		}
	}
	return nil
}

// rolePair maps a detection keyword to a user role. Scanned in order; the
// first match wins.
type rolePair struct {
	keyword string
	role    string
}

var roleTable = []rolePair{
	{"auth", "user"},
	{"login", "user"},
	{"register", "user"},
	{"profile", "user"},
	{"account", "user"},
	{"admin", "administrator"},
	{"manage", "administrator"},
	{"dashboard", "user"},
	{"api", "developer"},
	{"data", "analyst"},
	{"report", "manager"},
	{"payment", "customer"},
	{"order", "customer"},
	{"notification", "user"},
	{"search", "user"},
	{"chat", "user"},
	{"message", "user"},
	{"file", "user"},
	{"upload", "user"},
	{"download", "user"},
}

// benefitPair maps a detection keyword to a benefit phrase.
type benefitPair struct {
	keyword string
	benefit string
}

var benefitTable = []benefitPair{
	{"auth", "securely access my account"},
	{"login", "access the system securely"},
	{"search", "quickly find the information I need"},
	{"upload", "share and store my files"},
	{"manage", "efficiently organize my data"},
	{"notification", "stay informed about important updates"},
	{"api", "integrate with external systems"},
	{"dashboard", "have an overview of my information"},
	{"profile", "maintain my personal information"},
}

// actionVerbs are recognized as the primary action of a description.
var actionVerbs = map[string]bool{
	"create": true, "add": true, "update": true, "edit": true,
	"delete": true, "remove": true, "view": true, "see": true,
	"manage": true, "search": true, "find": true, "upload": true,
	"download": true, "send": true, "receive": true, "login": true,
	"register": true, "authenticate": true, "access": true,
	"configure": true, "setup": true, "enable": true, "disable": true,
}

// effortPair maps a complexity keyword to its additive bonus.
type effortPair struct {
	keyword string
	bonus   int
}

// complexityTable lists indicators that raise the effort estimate. Bonuses
// are additive with no cap. The base feature type already prices its own
// domain, so type keywords (e.g. "authentication") carry no extra bonus.
var complexityTable = []effortPair{
	{"integration", 2},
	{"security", 2},
	{"payment", 3},
	{"real-time", 2},
	{"dashboard", 2},
	{"admin", 2},
	{"reporting", 2},
	{"analytics", 2},
	{"ai", 3},
	{"machine learning", 3},
	{"complex", 2},
	{"multiple", 1},
}

// baseEfforts is the per-type starting estimate.
var baseEfforts = map[FeatureType]int{
	FeatureAuthentication: 8,
	FeatureCRUD:           5,
	FeatureAPI:            5,
	FeatureSearch:         3,
	FeatureFileManagement: 8,
	FeatureNotification:   3,
	FeatureGeneral:        3,
}

// tagPair maps a technology keyword to its tag.
type tagPair struct {
	keyword string
	tag     string
}

var tagTable = []tagPair{
	{"api", "api"},
	{"database", "database"},
	{"frontend", "frontend"},
	{"backend", "backend"},
	{"auth", "authentication"},
	{"security", "security"},
	{"performance", "performance"},
	{"ui", "ui-ux"},
	{"test", "testing"},
}
