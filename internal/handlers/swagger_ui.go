package handlers

import (
	"html/template"
	"net/http"

	"bike-dashboard/pkg/logging"
)

var swaggerPage = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.10.0/swagger-ui.css">
    <style>
        body { margin:0; padding:0; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.10.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: "{{.SpecURL}}",
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis]
            });
        };
    </script>
</body>
</html>`))

// SwaggerUI serves the Swagger UI page for the OpenAPI document at specURL.
// The URL sits in a script block, so html/template writes it as an escaped JS string.
func SwaggerUI(specURL string, logger *logging.StructuredLogger) http.HandlerFunc {
	data := struct {
		Title   string
		SpecURL string
	}{
		Title:   "Bike Rental Dashboard API",
		SpecURL: specURL,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := swaggerPage.Execute(w, data); err != nil {
			logger.Error(r.Context(), "[API_DOCS_ERROR] Failed to render Swagger UI", logging.Fields{
				"spec_url": specURL,
			}, err)
		}
	}
}
