package rekognition

// Config holds configuration for the AWS Rekognition landmark provider
type Config struct {
	// Region is the AWS region where the Rekognition service is called (e.g., "us-east-1")
	Region string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region: "us-east-1",
	}
}
