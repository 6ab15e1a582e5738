package entity

// QueueFilter is a domain-level filter for listing today's queue.
// Used by repository layer to avoid coupling with delivery DTOs.
type QueueFilter struct {
	Department string // exact match, empty = all departments
	Status     string // one of the TokenStatus values, empty = all
}
