// pkg/manifest/types.go
package manifest

import (
	"encoding/xml"
	"fmt"
)

// AndroidNS is the XML namespace every manifest attribute lives in
const AndroidNS = "http://schemas.android.com/apk/res/android"

// Manifest is the in-memory package descriptor. Field order here is the
// serialization order; keep it stable, the XML bytes must be reproducible.
type Manifest struct {
	XMLName     xml.Name `xml:"manifest"`
	NS          string   `xml:"xmlns:android,attr"`
	Package     string   `xml:"package,attr"`
	VersionCode int      `xml:"android:versionCode,attr"`
	VersionName string   `xml:"android:versionName,attr"`

	Sdk         Sdk              `xml:"uses-sdk"`
	Permissions []UsesPermission `xml:"uses-permission"`
	Features    []UsesFeature    `xml:"uses-feature"`
	Application Application      `xml:"application"`

	// Raw carries caller-supplied XML fragments through untouched, for
	// manifest vocabulary this model does not know about yet
	Raw string `xml:",innerxml"`
}

// Sdk declares the API level window the package supports
type Sdk struct {
	Min    int `xml:"android:minSdkVersion,attr"`
	Target int `xml:"android:targetSdkVersion,attr"`
	Max    int `xml:"android:maxSdkVersion,attr,omitempty"`
}

// UsesPermission declares one requested permission
type UsesPermission struct {
	Name string `xml:"android:name,attr"`
}

// UsesFeature declares a hardware or software feature the package uses
type UsesFeature struct {
	Name     string `xml:"android:name,attr,omitempty"`
	GlES     string `xml:"android:glEsVersion,attr,omitempty"`
	Required *bool  `xml:"android:required,attr,omitempty"`
}

// Application is the application element with its components
type Application struct {
	Label       string `xml:"android:label,attr,omitempty"`
	Theme       string `xml:"android:theme,attr,omitempty"`
	Debuggable  *bool  `xml:"android:debuggable,attr,omitempty"`
	HasCode     *bool  `xml:"android:hasCode,attr,omitempty"`
	ExtractLibs *bool  `xml:"android:extractNativeLibs,attr,omitempty"`

	Activities []Activity `xml:"activity"`
	Services   []Service  `xml:"service"`
	Receivers  []Receiver `xml:"receiver"`
}

// Activity is one activity component declaration
type Activity struct {
	Name          string         `xml:"android:name,attr"`
	Label         string         `xml:"android:label,attr,omitempty"`
	Exported      *bool          `xml:"android:exported,attr,omitempty"`
	LaunchMode    string         `xml:"android:launchMode,attr,omitempty"`
	ConfigChanges string         `xml:"android:configChanges,attr,omitempty"`
	MetaData      []MetaData     `xml:"meta-data"`
	IntentFilters []IntentFilter `xml:"intent-filter"`
}

// Service is one service component declaration
type Service struct {
	Name          string         `xml:"android:name,attr"`
	Exported      *bool          `xml:"android:exported,attr,omitempty"`
	Permission    string         `xml:"android:permission,attr,omitempty"`
	IntentFilters []IntentFilter `xml:"intent-filter"`
}

// Receiver is one broadcast receiver component declaration
type Receiver struct {
	Name          string         `xml:"android:name,attr"`
	Exported      *bool          `xml:"android:exported,attr,omitempty"`
	Permission    string         `xml:"android:permission,attr,omitempty"`
	IntentFilters []IntentFilter `xml:"intent-filter"`
}

// MetaData is a name/value pair attached to a component
type MetaData struct {
	Name  string `xml:"android:name,attr"`
	Value string `xml:"android:value,attr"`
}

// IntentFilter narrows which intents a component responds to
type IntentFilter struct {
	Actions    []Action   `xml:"action"`
	Categories []Category `xml:"category"`
	Data       []Data     `xml:"data"`
}

// Action is an intent action name
type Action struct {
	Name string `xml:"android:name,attr"`
}

// Category is an intent category name
type Category struct {
	Name string `xml:"android:name,attr"`
}

// Data is an intent data constraint
type Data struct {
	Scheme   string `xml:"android:scheme,attr,omitempty"`
	Host     string `xml:"android:host,attr,omitempty"`
	MimeType string `xml:"android:mimeType,attr,omitempty"`
}

// ValidationError indicates a manifest that violates the platform's rules.
// It is produced at construction and merge time; an invalid Manifest never
// reaches serialization.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid manifest: %s: %s", e.Field, e.Reason)
}

// DuplicateComponentError indicates two differing components claiming the
// same (tag, name) pair during a merge
type DuplicateComponentError struct {
	Tag  string
	Name string
}

func (e *DuplicateComponentError) Error() string {
	return fmt.Sprintf("duplicate %s component %q", e.Tag, e.Name)
}
