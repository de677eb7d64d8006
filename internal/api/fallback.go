package api

// SampleAPIs is the listing shown when the backend cannot be read.
func SampleAPIs() []APIRecord {
	return []APIRecord{
		{ID: "1", Name: "Payment API", Version: "2.0", Status: "Active", Owner: "Team Alpha", DeployedDate: "2025-10-15"},
		{ID: "2", Name: "User API", Version: "1.5", Status: "Active", Owner: "Team Beta", DeployedDate: "2025-10-10"},
		{ID: "3", Name: "Order API", Version: "1.0", Status: "Active", Owner: "Team Gamma", DeployedDate: "2025-10-08"},
	}
}

// SampleHistory is the history shown when the backend cannot be read.
func SampleHistory() []HistoryRecord {
	return []HistoryRecord{
		{ID: "1", APIName: "Payment API", Action: "Created", User: "John Doe", Timestamp: "2025-10-15 10:30 AM"},
		{ID: "2", APIName: "User API", Action: "Updated", User: "Jane Smith", Timestamp: "2025-10-14 02:15 PM"},
		{ID: "3", APIName: "Order API", Action: "Created", User: "Bob Johnson", Timestamp: "2025-10-08 09:45 AM"},
	}
}

func assumedDeployment() Confirmation {
	return Confirmation{Message: MsgDeployed, Assumed: true}
}

func assumedAvailable(apiContext string) func() ContextAvailability {
	return func() ContextAvailability {
		return ContextAvailability{Context: apiContext, Available: true, Message: MsgContextAvailable, Assumed: true}
	}
}
