// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The query pipeline is split into small collaborators wired by ChatService:
// Retriever, GroundingAssembler, PromptSelector, ResponseGenerator and
// Interpret. IndexService and ExtractionService are offline maintenance jobs.
package services
