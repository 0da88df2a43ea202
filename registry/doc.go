/*
Package registry binds Go entity types to the DynamoDB table that stores them.

	registry.RegisterTable[User](registry.TableBinding{
	    TableName:   "users",
	    IDAttribute: "userId",
	})

	binding, ok := registry.GetTable[User]()

Stores and repositories resolve their table through the registry when they are
built without an explicit binding. The registry is thread-safe and is normally
populated during initialization from the configuration's tables section.
*/
package registry
