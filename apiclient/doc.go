// Package apiclient provides an HTTP client for the external task API.
//
// The client is a probe: behavior checks compare observed status codes and
// payloads against expectations, so Do returns every received response to
// the caller regardless of status. Errors are transport-level only (timeout,
// connection failure, unencodable body) and are reported as retryable
// AppErrors, which the optional retry policy consults.
//
// Basic usage:
//
//	client, err := apiclient.New(apiclient.Config{
//		BaseURL: "http://tracker.local:8080",
//		Retry:   apiclient.DefaultRetryConfig(),
//	})
//	if err != nil {
//		return err
//	}
//
//	result, err := client.CreateTask(ctx, apiclient.TaskPayload{
//		ProjectID: projectID,
//		Title:     "probe",
//		Status:    "todo",
//	})
package apiclient
