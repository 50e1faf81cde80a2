package environment

// Table holds the literal endpoint list for every Environment. It must always
// agree with Environment.URLs; it exists so the templated hostnames can be
// reviewed (and grepped for) as plain strings.
var Table = map[Environment][]string{
	Dev: {
		"https://api-dev.eastcoast-online.net/version",
		"https://dev.eastcoast-online.net",
		"https://app-dev.eastcoastexpress.net/api/v2/version",
		"https://dev-evac-api.eastcoast-online.net/api/version",
		"https://new-dev.eastcoast-online.net/",
	},
	Stage: {
		"https://api-stage.eastcoast-online.net/version",
		"https://stage.eastcoast-online.net",
		"https://app-stage.eastcoastexpress.net/api/v2/version",
		"https://stage-evac-api.eastcoast-online.net/api/version",
		"https://new-stage.eastcoast-online.net/",
	},
	Prod: {
		"https://api.eastcoast-online.net/version",
		"https://eastcoast-online.net",
		"https://app.eastcoastexpress.net/api/v2/version",
		"https://evac-api.eastcoast-online.net/api/version",
		"https://new.eastcoast-online.net/",
	},
}
