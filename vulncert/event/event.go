/*
Package event provides event types for all events that the vulncert library published onto the event bus. By convention, for each event
defined here there should be a corresponding event parser defined in the parsers/ child package.
*/
package event

import "github.com/wagoodman/go-partybus"

const (
	// AppUpdateAvailable is a partybus event that occurs when an application update is available
	AppUpdateAvailable partybus.EventType = "vulncert-app-update-available"

	// UpdateVulnerabilityDatabase is a partybus event that occurs when a vulnerability feed set is being downloaded and activated
	UpdateVulnerabilityDatabase partybus.EventType = "vulncert-update-vulnerability-database"

	// DictionaryIndexingStarted is a partybus event that occurs when the CPE dictionary index begins a (re)build
	DictionaryIndexingStarted partybus.EventType = "vulncert-dictionary-indexing-started"

	// ProductMatchingStarted is a partybus event that occurs when a batch of certified products starts CPE matching
	ProductMatchingStarted partybus.EventType = "vulncert-product-matching-started"

	// ProductMatchingFinished is a partybus event that occurs when product matching and CVE resolution has completed
	ProductMatchingFinished partybus.EventType = "vulncert-product-matching-finished"

	// NonRootCommandFinished is a partybus event that occurs when a CLI subcommand completes and has (string) output to show
	NonRootCommandFinished partybus.EventType = "vulncert-non-root-command-finished"
)
