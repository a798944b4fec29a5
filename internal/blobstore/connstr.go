package blobstore

import "strings"

// devConnectionString is the Azurite well-known development account.
const devConnectionString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
	"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
	"BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1"

// expandConnectionString rewrites UseDevelopmentStorage=true into the
// explicit Azurite connection string; azblob only parses the long form.
// Other strings pass through unchanged.
func expandConnectionString(s string) string {
	for _, part := range strings.Split(s, ";") {
		key, value, ok := strings.Cut(part, "=")
		if ok && strings.EqualFold(strings.TrimSpace(key), "UseDevelopmentStorage") &&
			strings.EqualFold(strings.TrimSpace(value), "true") {
			return devConnectionString
		}
	}
	return s
}
