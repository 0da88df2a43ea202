/*
Package storagemodels defines the data structures used throughout EntityQuery.

Key Types:

Filters:
An ordered mapping from attribute name to predicates. Predicates of the same
attribute are OR-combined; attributes are AND-combined in insertion order:

	filters := storagemodels.NewFilters().
	    Add("age", storagemodels.Gt(18), storagemodels.Lt(65)).
	    Add("deletedAt", storagemodels.NotExists())

FilterExpression:
Either a Comparison (operator plus string or number) or a Function
(attribute_not_exists, attribute_exists). Filters also decode from JSON, keeping
key order:

	{"age": [{"operator": ">", "value": 18}],
	 "deletedAt": [{"conditionFunction": "attribute_not_exists"}]}

QueryParameters:
The key condition of a Query operation:

	params := storagemodels.QueryParameters{
	    IndexName:              "UserNameIndex",
	    KeyConditionExpression: "userName = :userName",
	    ExpressionAttributeValues: map[string]types.AttributeValue{
	        ":userName": &types.AttributeValueMemberS{Value: "jdoe"},
	    },
	}

RequestDescriptor:
The assembled request with nil for every absent optional field. ScanInput and
QueryInput convert it into SDK inputs.

StreamResult / StreamOptions:
Item-by-item delivery of a read with progress metadata.
*/
package storagemodels
