// Package resilience provides retry with exponential backoff for calls
// that leave the process, primarily tracker API requests made by checks.
//
// Retries honor context cancellation and consult the error classification
// from the errors package: only errors marked retryable are attempted again.
//
//	result, err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() (*Task, error) {
//	    return client.GetTask(ctx, id)
//	})
package resilience
