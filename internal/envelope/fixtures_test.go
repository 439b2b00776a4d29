package envelope

const v1Event = `{
  "resource": "/{proxy+}",
  "path": "/widgets/7",
  "httpMethod": "get",
  "headers": {"Content-Type": "application/json", "X-Forwarded-For": "1.2.3.4, 5.6.7.8"},
  "queryStringParameters": {"page": "2"},
  "requestContext": {"requestId": "v1-req", "identity": {"sourceIp": ""}},
  "body": "",
  "isBase64Encoded": false
}`

const v2Event = `{
  "version": "2.0",
  "routeKey": "$default",
  "rawPath": "/widgets",
  "rawQueryString": "a=1&a=2",
  "cookies": ["s=1", "t=2"],
  "headers": {"content-type": "application/json"},
  "requestContext": {"requestId": "v2-req", "http": {"method": "POST", "path": "/widgets", "sourceIp": "9.9.9.9"}},
  "body": "{\"n\":1}",
  "isBase64Encoded": false
}`

const albEvent = `{
  "requestContext": {"elb": {"targetGroupArn": "arn:aws:elasticloadbalancing:eu-west-1:123:targetgroup/tg/abc"}},
  "httpMethod": "PUT",
  "path": "/items",
  "queryStringParameters": {"q": "a%20b"},
  "headers": {"x-forwarded-for": "7.7.7.7", "x-amzn-trace-id": "Root=1-abc"},
  "body": "aGVsbG8=",
  "isBase64Encoded": true
}`
