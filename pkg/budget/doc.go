// Package budget implements the spending guard that runs ahead of every
// provider dispatch. It checks the current calendar-period spend against
// each enabled budget row and decides whether a request proceeds, is
// downgraded to a cheaper model tier, or is denied outright.
package budget
