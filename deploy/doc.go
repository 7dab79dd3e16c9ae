// Package deploy creates a resource account and publishes a Move package to it.
//
// A run moves through the states
//
//	Start -> AccountCreationSubmitted -> AccountCreationConfirmed -> PublishSubmitted -> PublishConfirmed
//
// and ends in Failed on the first error. Both on-chain steps are executed as operations, so
// with a persistent reporter a run that stopped after the account was created resumes at the
// publish step.
package deploy
