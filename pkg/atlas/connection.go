package atlas

import "strings"

// AppName attributes connections to the hackathon platform.
const AppName = "devrel-hackathon-platform"

const appNameParameter = "appName="

// TagConnectionString adds the appName option to a MongoDB connection string unless the
// connection string already carries one. Empty connection strings are returned as is since Atlas
// only publishes them once the cluster is ready.
func TagConnectionString(connectionString string) string {
	if connectionString == "" || strings.Contains(connectionString, appNameParameter) {
		return connectionString
	}

	tag := appNameParameter + AppName

	if strings.Contains(connectionString, "?") {
		if strings.HasSuffix(connectionString, "?") || strings.HasSuffix(connectionString, "&") {
			return connectionString + tag
		}
		return connectionString + "&" + tag
	}

	// options need to follow a path, mongodb+srv://host?x=y isn't valid
	hosts := connectionString
	if i := strings.Index(connectionString, "://"); i >= 0 {
		hosts = connectionString[i+len("://"):]
	}
	if strings.Contains(hosts, "/") {
		return connectionString + "?" + tag
	}
	return connectionString + "/?" + tag
}
