// Package ui renders command lifecycle events for human consumption, bridging
// execshell observers to the structured logger.
package ui
